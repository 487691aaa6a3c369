// internal/tui/model.go
// Package tui provides the interactive terminal interface for council chat.
// Each assistant turn moves through three phases (independent responses,
// peer rankings, final synthesis) and is rendered incrementally as stage
// events arrive from the deliberation backend.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/councilchat/council/internal/appconfig"
	"github.com/councilchat/council/internal/council"
	"github.com/councilchat/council/internal/logging"
	"github.com/councilchat/council/internal/markdown"
	"github.com/councilchat/council/internal/providers"
	"github.com/councilchat/council/internal/util"
)

// Config represents the shared application configuration for the TUI.
type Config = appconfig.Config

// stageLoadingMsg marks a deliberation phase as in flight on the active message.
type stageLoadingMsg struct{ stage council.Stage }

// stage1Msg delivers the independent responses for the active message.
type stage1Msg struct{ responses []council.Stage1Response }

// stage2Msg delivers the peer rankings and derived metadata for the active message.
type stage2Msg struct {
	rankings []council.Stage2Ranking
	meta     council.Metadata
}

// stage3Msg delivers the final synthesis for the active message.
type stage3Msg struct{ final council.Stage3Response }

// turnDoneMsg is sent when a deliberation turn completes normally.
type turnDoneMsg struct{}

// turnStoppedMsg is sent when the user cancels a deliberation turn.
type turnStoppedMsg struct{}

// turnErrMsg is sent when a deliberation turn fails.
type turnErrMsg struct{ error }

// focusInputMsg schedules input focus for the pass after input recovery.
type focusInputMsg struct{}

// tickMsg is sent at regular intervals, used for the elapsed-time display.
type tickMsg time.Time

// chatModel is the main application model for the Bubble Tea UI. It owns
// the conversation, the per-message cells, and the single "currently
// streaming" flag that classifies the active message.
type chatModel struct {
	ctx      context.Context
	config   *Config
	provider providers.CouncilProvider

	conversation *council.Conversation
	cells        map[*council.Message]*messageCell
	md           markdownRenderer

	textArea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	isLoading     bool
	currentStage  council.Stage
	err           error
	lastSubmitted string
	pendingInput  string
	turnCancel    context.CancelFunc

	requestStartTime time.Time
	width, height    int
	program          *tea.Program
}

// initialModel creates and initializes a new chat model with default values.
func initialModel(ctx context.Context, cfg *Config, provider providers.CouncilProvider) *chatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask the council..."
	ta.Focus()
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(100, 5)

	return &chatModel{
		ctx:          ctx,
		config:       cfg,
		provider:     provider,
		conversation: council.NewConversation(),
		cells:        make(map[*council.Message]*messageCell),
		md:           markdown.New(78),
		spinner:      s,
		textArea:     ta,
		viewport:     vp,
	}
}

// deliberateCmd creates a Bubble Tea command that runs one council turn and
// forwards phase results to the program as messages.
func deliberateCmd(ctx context.Context, p *tea.Program, provider providers.CouncilProvider, history []providers.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		go func() {
			err := provider.Deliberate(ctx, providers.Request{History: history}, providers.Callbacks{
				OnStageLoading: func(stage council.Stage) {
					p.Send(stageLoadingMsg{stage: stage})
				},
				OnStage1: func(responses []council.Stage1Response) {
					p.Send(stage1Msg{responses: responses})
				},
				OnStage2: func(rankings []council.Stage2Ranking, meta council.Metadata) {
					p.Send(stage2Msg{rankings: rankings, meta: meta})
				},
				OnStage3: func(final council.Stage3Response) {
					p.Send(stage3Msg{final: final})
				},
			})
			switch {
			case err == nil:
				p.Send(turnDoneMsg{})
			case errors.Is(err, context.Canceled):
				p.Send(turnStoppedMsg{})
			default:
				p.Send(turnErrMsg{error: err})
			}
		}()
		return nil
	}
}

// focusInputCmd schedules focus for the pass after the current one.
func focusInputCmd() tea.Cmd {
	return func() tea.Msg {
		return focusInputMsg{}
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the Bubble Tea model and starts the spinner animation.
func (m *chatModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is the central update function for the Bubble Tea model.
func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.isLoading {
				m.stopGeneration()
				return m, nil
			}
			return m, tea.Quit
		case "ctrl+n":
			if !m.isLoading {
				m.newConversation()
				return m, nil
			}
		case "enter":
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, m.spinner.Tick, cmd, tickCmd())
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		// Fragments are wrapped for the new width, so every cache is stale.
		m.cells = make(map[*council.Message]*messageCell)
		m.md = markdown.New(min(msg.Width-4, 100))
		m.refreshTranscript(true)

	case stageLoadingMsg:
		m.applyStageLoading(msg.stage)
		m.refreshTranscript(false)
		return m, nil

	case stage1Msg:
		if active := m.activeMessage(); active != nil {
			active.Stage1 = msg.responses
			active.Loading.Stage1 = false
			m.refreshTranscript(false)
		}
		return m, nil

	case stage2Msg:
		if active := m.activeMessage(); active != nil {
			active.Stage2 = msg.rankings
			active.Stage2Meta = &msg.meta
			active.Loading.Stage2 = false
			m.refreshTranscript(false)
		}
		return m, nil

	case stage3Msg:
		if active := m.activeMessage(); active != nil {
			final := msg.final
			active.Stage3 = &final
			active.Loading.Stage3 = false
			m.refreshTranscript(false)
		}
		return m, nil

	case turnDoneMsg:
		m.finishTurn()
		m.textArea.Focus()
		m.refreshTranscript(true)
		return m, nil

	case turnStoppedMsg:
		m.finishTurn()
		// Input recovery: consume the pending slot exactly once, then
		// schedule focus for after this render pass. Any text typed in
		// the meantime is overwritten; last cancellation wins.
		if m.pendingInput != "" {
			m.textArea.SetValue(m.pendingInput)
			m.pendingInput = ""
			m.refreshTranscript(true)
			return m, focusInputCmd()
		}
		m.textArea.Focus()
		m.refreshTranscript(true)
		return m, nil

	case turnErrMsg:
		m.err = msg.error
		m.finishTurn()
		m.textArea.Focus()
		m.refreshTranscript(true)
		return m, nil

	case focusInputMsg:
		m.textArea.Focus()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.isLoading {
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit appends the user's message and starts a deliberation turn.
// Submissions are ignored while a turn is active.
func (m *chatModel) submit() tea.Cmd {
	if m.isLoading {
		return nil
	}
	userInput := strings.TrimSpace(m.textArea.Value())
	if userInput == "" {
		return nil
	}

	m.conversation.Append(council.NewUserMessage(userInput))
	m.conversation.Append(council.NewAssistantMessage())
	m.lastSubmitted = userInput
	m.textArea.Reset()
	m.textArea.Blur()
	m.isLoading = true
	m.currentStage = council.StageResponses
	m.err = nil
	m.requestStartTime = time.Now()

	turnCtx, cancel := context.WithCancel(m.ctx)
	m.turnCancel = cancel

	m.refreshTranscript(true)
	return deliberateCmd(turnCtx, m.program, m.provider, m.history())
}

// stopGeneration cancels the active turn. Stopping is idempotent; the
// provider acknowledges by ending the turn, which settles the active
// message and arms input recovery with the originally submitted text.
func (m *chatModel) stopGeneration() {
	if m.turnCancel != nil {
		m.turnCancel()
	}
	m.pendingInput = m.lastSubmitted
}

// finishTurn settles the active message and releases turn state.
func (m *chatModel) finishTurn() {
	if active := m.activeMessage(); active != nil {
		active.Stop()
	}
	if m.turnCancel != nil {
		m.turnCancel()
		m.turnCancel = nil
	}
	m.isLoading = false
}

// activeMessage returns the message currently receiving stage updates:
// the last message, when it is an assistant entry and a turn is running.
func (m *chatModel) activeMessage() *council.Message {
	if !m.isLoading || m.conversation == nil {
		return nil
	}
	last := m.conversation.Last()
	if last == nil || last.Role != council.RoleAssistant {
		return nil
	}
	return last
}

// applyStageLoading marks the given stage in flight on the active message.
// A stage-1 restart on a settled message is an upstream contract violation:
// it is logged, fatal in debug builds, and never reactivates the message.
func (m *chatModel) applyStageLoading(stage council.Stage) {
	last := m.conversation.Last()
	if last == nil || last.Role != council.RoleAssistant {
		return
	}
	if last.Settled() {
		if m.config != nil && m.config.Debug {
			log.Panicf("stage %s loading event for settled message", stage)
		}
		logging.LogEvent("ignoring stage %s loading event for settled message", stage)
		return
	}
	m.currentStage = stage
	switch stage {
	case council.StageResponses:
		last.Loading.Stage1 = true
	case council.StageRankings:
		last.Loading.Stage1 = false
		last.Loading.Stage2 = true
	case council.StageSynthesis:
		last.Loading.Stage2 = false
		last.Loading.Stage3 = true
	}
}

// history flattens the conversation for the backend: user prompts plus the
// synthesized answers of settled turns. Intermediate stage data stays local.
func (m *chatModel) history() []providers.ChatMessage {
	var history []providers.ChatMessage
	for _, msg := range m.conversation.Messages {
		switch {
		case msg.Role == council.RoleUser:
			history = append(history, providers.ChatMessage{Role: "user", Content: msg.Content})
		case msg.Stage3 != nil:
			history = append(history, providers.ChatMessage{Role: "assistant", Content: msg.Stage3.Response})
		}
	}
	return history
}

// newConversation discards the current conversation along with every cell
// cache and starts fresh.
func (m *chatModel) newConversation() {
	m.conversation = council.NewConversation()
	m.cells = make(map[*council.Message]*messageCell)
	m.err = nil
	m.textArea.Reset()
	m.textArea.Focus()
	m.refreshTranscript(true)
}

// cellFor returns the memoized cell wrapping the given message, creating it
// on first sight.
func (m *chatModel) cellFor(msg *council.Message) *messageCell {
	cell, ok := m.cells[msg]
	if !ok {
		cell = newMessageCell(msg, m.md)
		m.cells[msg] = cell
	}
	return cell
}

// transcript composes the visible conversation by iterating messages in
// sequence order and classifying each entry. Exactly one entry can be
// active: the last one, when it is an assistant message and a turn is
// running.
func (m *chatModel) transcript() string {
	if m.conversation == nil {
		return loadingTextStyle.Render("No conversation selected.")
	}
	if len(m.conversation.Messages) == 0 {
		return loadingTextStyle.Render("Start a conversation by asking the council a question.")
	}

	lastIndex := len(m.conversation.Messages) - 1
	var parts []string
	for i, msg := range m.conversation.Messages {
		isActive := m.isLoading && i == lastIndex && msg.Role == council.RoleAssistant
		parts = append(parts, m.cellFor(msg).View(isActive))
	}
	return strings.Join(parts, "\n\n")
}

// refreshTranscript recomputes the viewport content. Auto-scroll reveals
// the newest content whenever the message sequence or the loading flag
// changed; it is cosmetic and never blocks input.
func (m *chatModel) refreshTranscript(scroll bool) {
	m.viewport.SetContent(m.transcript())
	if scroll || m.isLoading {
		m.viewport.GotoBottom()
	}
}

// View renders the application's UI based on the current state of the model.
func (m *chatModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	title := headerStyle.Render("Council")
	meta := fmt.Sprintf(" %d models, chairman: %s", len(m.config.CouncilModels), m.config.ChairmanModel)
	meta += "  (enter to send, esc to quit, ctrl+n for new conversation)"
	builder.WriteString(title + loadingTextStyle.Render(util.TruncateRunes(meta, m.width-10)) + "\n\n")

	builder.WriteString(m.viewport.View())

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		builder.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		progress := fmt.Sprintf(" Council in progress (%s)... %ss, esc to stop", m.currentStage, timer)
		builder.WriteString("\n" + m.spinner.View() + progress)
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	return builder.String()
}
