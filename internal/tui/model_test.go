// internal/tui/model_test.go
package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/councilchat/council/internal/council"
	"github.com/councilchat/council/internal/providers"
)

// fakeProvider satisfies providers.CouncilProvider; model tests drive stage
// events directly through Update instead of running a turn.
type fakeProvider struct{}

func (fakeProvider) Deliberate(ctx context.Context, req providers.Request, cb providers.Callbacks) error {
	return nil
}

func (fakeProvider) Close() error { return nil }

func newTestModel(t *testing.T) *chatModel {
	t.Helper()
	cfg := &Config{
		CouncilModels: []string{"alpha/one", "beta/two", "gamma/three"},
		ChairmanModel: "beta/two",
	}
	m := initialModel(context.Background(), cfg, fakeProvider{})
	m2, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m2.(*chatModel)
}

func submitPrompt(t *testing.T, m *chatModel, prompt string) *chatModel {
	t.Helper()
	m.textArea.SetValue(prompt)
	m2, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m2.(*chatModel)
}

func TestEmptyConversationPlaceholders(t *testing.T) {
	m := newTestModel(t)

	if got := m.transcript(); !strings.Contains(got, "Start a conversation") {
		t.Fatalf("expected start placeholder, got %q", got)
	}

	m.conversation = nil
	if got := m.transcript(); !strings.Contains(got, "No conversation selected") {
		t.Fatalf("expected no-conversation placeholder, got %q", got)
	}
}

func TestSubmitAppendsUserAndAssistantMessages(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "What is 2+2?")

	msgs := m.conversation.Messages
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after submit, got %d", len(msgs))
	}
	if msgs[0].Role != council.RoleUser || msgs[0].Content != "What is 2+2?" {
		t.Fatalf("expected literal user message, got %+v", msgs[0])
	}
	if msgs[1].Role != council.RoleAssistant || !msgs[1].Loading.Stage1 {
		t.Fatalf("expected assistant message loading stage 1, got %+v", msgs[1])
	}
	if !m.isLoading {
		t.Fatal("expected loading after submit")
	}

	// The submit control becomes a stop control.
	out := m.View()
	if !strings.Contains(out, "esc to stop") {
		t.Fatalf("expected stop control while loading: %s", out)
	}
}

func TestSubmitIgnoredWhileTurnActive(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "first")
	m = submitPrompt(t, m, "second")

	if len(m.conversation.Messages) != 2 {
		t.Fatalf("submission during an active turn must be a no-op, got %d messages", len(m.conversation.Messages))
	}
}

func TestStageProgressionRendering(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "What is 2+2?")

	responses := []council.Stage1Response{
		{Model: "alpha/one", Response: "4"},
		{Model: "beta/two", Response: "four"},
		{Model: "gamma/three", Response: "2+2=4"},
	}
	m2, _ := m.Update(stage1Msg{responses: responses})
	m = m2.(*chatModel)
	m2, _ = m.Update(stageLoadingMsg{stage: council.StageRankings})
	m = m2.(*chatModel)

	got := m.transcript()
	for _, model := range []string{"alpha/one", "beta/two", "gamma/three"} {
		if !strings.Contains(got, model) {
			t.Fatalf("expected stage-1 block for %s: %s", model, got)
		}
	}
	if !strings.Contains(got, "ranking") {
		t.Fatalf("expected stage-2 loading indicator: %s", got)
	}
	if strings.Contains(got, "Final answer") {
		t.Fatalf("stage-3 section must be absent: %s", got)
	}

	active := m.conversation.Last()
	if active.Stage2 != nil && active.Stage1 == nil {
		t.Fatal("stage ordering invariant violated")
	}
}

func TestFullTurnSettlesMessage(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "q")

	m2, _ := m.Update(stage1Msg{responses: []council.Stage1Response{{Model: "alpha/one", Response: "a"}}})
	m = m2.(*chatModel)
	m2, _ = m.Update(stage2Msg{
		rankings: []council.Stage2Ranking{{Model: "alpha/one", ParsedRanking: []string{"Response A"}}},
		meta:     council.Metadata{LabelToModel: map[string]string{"Response A": "alpha/one"}},
	})
	m = m2.(*chatModel)
	m2, _ = m.Update(stage3Msg{final: council.Stage3Response{Model: "beta/two", Response: "done"}})
	m = m2.(*chatModel)
	m2, _ = m.Update(turnDoneMsg{})
	m = m2.(*chatModel)

	last := m.conversation.Last()
	if !last.Settled() {
		t.Fatal("message with stage-3 data must be settled")
	}
	if m.isLoading {
		t.Fatal("expected not loading after turn completes")
	}
	if last.Stage3 == nil && last.Stage2 != nil {
		t.Fatal("stage ordering invariant violated")
	}
	if !strings.Contains(m.transcript(), "done") {
		t.Fatal("expected final answer in transcript")
	}
}

func TestStopRecoversInputExactlyOnce(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "Explain recursion")

	m2, _ := m.Update(stage1Msg{responses: []council.Stage1Response{{Model: "alpha/one", Response: "a"}}})
	m = m2.(*chatModel)
	m2, _ = m.Update(stageLoadingMsg{stage: council.StageRankings})
	m = m2.(*chatModel)

	// User clicks stop mid stage-2 loading.
	m2, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = m2.(*chatModel)
	if m.pendingInput != "Explain recursion" {
		t.Fatalf("expected pending input armed, got %q", m.pendingInput)
	}

	m2, cmd := m.Update(turnStoppedMsg{})
	m = m2.(*chatModel)

	last := m.conversation.Last()
	if !last.Settled() {
		t.Fatal("stopped message must settle")
	}
	if m.textArea.Value() != "Explain recursion" {
		t.Fatalf("expected input repopulated, got %q", m.textArea.Value())
	}
	if m.pendingInput != "" {
		t.Fatal("pending input must be consumed exactly once")
	}

	// Focus is scheduled for after this pass, not applied inline.
	if m.textArea.Focused() {
		t.Fatal("focus must not be applied in the recovery pass")
	}
	if cmd == nil {
		t.Fatal("expected deferred focus command")
	}
	m2, _ = m.Update(cmd())
	m = m2.(*chatModel)
	if !m.textArea.Focused() {
		t.Fatal("expected input focused after deferred step")
	}

	// The stop control reverts to the submit control.
	if strings.Contains(m.View(), "esc to stop") {
		t.Fatal("expected submit control after stop")
	}

	// Stage data arriving after the stop must not mutate the message.
	m2, _ = m.Update(stage2Msg{rankings: []council.Stage2Ranking{{Model: "alpha/one"}}})
	m = m2.(*chatModel)
	if m.conversation.Last().Stage2 != nil {
		t.Fatal("settled message accepted a mutation")
	}
}

func TestSettledMessageRestartIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "q")
	m2, _ := m.Update(stage3Msg{final: council.Stage3Response{Model: "beta/two", Response: "done"}})
	m = m2.(*chatModel)
	m2, _ = m.Update(turnDoneMsg{})
	m = m2.(*chatModel)

	// A stage-1 restart for a settled slot is an upstream contract
	// violation; outside debug mode it is logged and dropped.
	m2, _ = m.Update(stageLoadingMsg{stage: council.StageResponses})
	m = m2.(*chatModel)
	if m.conversation.Last().Loading.Any() {
		t.Fatal("settled message must not be reactivated")
	}
}

func TestSettledMessageRestartPanicsInDebug(t *testing.T) {
	m := newTestModel(t)
	m.config.Debug = true
	m = submitPrompt(t, m, "q")
	m2, _ := m.Update(stage3Msg{final: council.Stage3Response{Model: "beta/two", Response: "done"}})
	m = m2.(*chatModel)
	m2, _ = m.Update(turnDoneMsg{})
	m = m2.(*chatModel)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on settled-message restart in debug mode")
		}
	}()
	m.applyStageLoading(council.StageResponses)
}

func TestNewConversationDiscardsState(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "q")
	m2, _ := m.Update(stage3Msg{final: council.Stage3Response{Model: "beta/two", Response: "done"}})
	m = m2.(*chatModel)
	m2, _ = m.Update(turnDoneMsg{})
	m = m2.(*chatModel)

	oldID := m.conversation.ID
	m2, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = m2.(*chatModel)

	if m.conversation.ID == oldID {
		t.Fatal("expected a fresh conversation")
	}
	if len(m.conversation.Messages) != 0 || len(m.cells) != 0 {
		t.Fatal("expected empty conversation and cleared cell caches")
	}
}

func TestHistoryFlattensSettledTurns(t *testing.T) {
	m := newTestModel(t)
	m = submitPrompt(t, m, "first question")
	m2, _ := m.Update(stage3Msg{final: council.Stage3Response{Model: "beta/two", Response: "first answer"}})
	m = m2.(*chatModel)
	m2, _ = m.Update(turnDoneMsg{})
	m = m2.(*chatModel)

	m = submitPrompt(t, m, "second question")

	history := m.history()
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d: %+v", len(history), history)
	}
	if history[1].Role != "assistant" || history[1].Content != "first answer" {
		t.Fatalf("expected synthesized answer in history, got %+v", history[1])
	}
}
