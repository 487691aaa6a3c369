// internal/council/types.go
// Package council defines the conversation and message types shared between
// the deliberation backend and the terminal UI, plus the ranking math that
// turns anonymized peer rankings into an aggregate ordering.
package council

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message submitted by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the council.
	RoleAssistant Role = "assistant"
)

// Stage identifies one of the three sequential deliberation phases.
type Stage int

const (
	// StageResponses is phase 1: every council model answers independently.
	StageResponses Stage = iota + 1
	// StageRankings is phase 2: each model ranks the anonymized answers.
	StageRankings
	// StageSynthesis is phase 3: the chairman model writes the final answer.
	StageSynthesis
)

// String returns a short human-readable name for the stage.
func (s Stage) String() string {
	switch s {
	case StageResponses:
		return "responses"
	case StageRankings:
		return "rankings"
	case StageSynthesis:
		return "synthesis"
	default:
		return "unknown"
	}
}

// Stage1Response is a single model's independent answer from phase 1.
type Stage1Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// Stage2Ranking is one model's ranking of the anonymized phase-1 answers.
// Ranking holds the model's raw ranking text; ParsedRanking holds the
// extracted label order, best first.
type Stage2Ranking struct {
	Model         string   `json:"model"`
	Ranking       string   `json:"ranking"`
	ParsedRanking []string `json:"parsed_ranking"`
}

// Stage3Response is the chairman's final synthesis from phase 3.
type Stage3Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// AggregateRanking is one entry of the ordering derived across all peer
// rankings, distinct from any single model's ranking.
type AggregateRanking struct {
	Model         string  `json:"model"`
	AverageRank   float64 `json:"average_rank"`
	RankingsCount int     `json:"rankings_count"`
}

// Metadata carries the ranking bookkeeping that accompanies phase 2:
// the label-to-model mapping used to de-anonymize rankings for display,
// and the aggregate ordering, best first.
type Metadata struct {
	LabelToModel      map[string]string  `json:"label_to_model"`
	AggregateRankings []AggregateRanking `json:"aggregate_rankings"`
}

// StageFlags records which phases of an assistant turn are in flight.
// A flag and its stage's data slot are never both set for the same stage.
type StageFlags struct {
	Stage1 bool
	Stage2 bool
	Stage3 bool
}

// Any reports whether any stage is currently in flight.
func (f StageFlags) Any() bool {
	return f.Stage1 || f.Stage2 || f.Stage3
}

// Message is a single conversation entry. User messages carry only Content
// and are immutable once created. Assistant messages accumulate stage data
// in order 1→2→3 while active and settle permanently once Stage3 arrives
// or the turn is stopped.
type Message struct {
	Role    Role
	Content string

	Stage1     []Stage1Response
	Stage2     []Stage2Ranking
	Stage2Meta *Metadata
	Stage3     *Stage3Response

	Loading StageFlags

	// stopped is set when the user cancels the turn; the message settles
	// even without Stage3 data.
	stopped bool
}

// NewUserMessage creates an immutable user message with the literal text.
func NewUserMessage(text string) *Message {
	return &Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant message at the start of a turn,
// with phase 1 marked in flight and no stage data.
func NewAssistantMessage() *Message {
	return &Message{Role: RoleAssistant, Loading: StageFlags{Stage1: true}}
}

// Settled reports whether the message is guaranteed never to mutate again:
// all user messages, assistant messages with a synthesis, and assistant
// messages whose turn was stopped.
func (m *Message) Settled() bool {
	if m.Role == RoleUser {
		return true
	}
	return m.Stage3 != nil || m.stopped
}

// Stop settles the message immediately, clearing all loading flags.
// Stopping is idempotent.
func (m *Message) Stop() {
	m.stopped = true
	m.Loading = StageFlags{}
}

// Conversation is an ordered, append-only message sequence. At most one
// message is receiving updates at any time and it is always the last one.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Messages  []*Message
}

// NewConversation creates an empty conversation with a fresh identifier.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Append adds a message to the end of the conversation. The first user
// message doubles as the conversation title.
func (c *Conversation) Append(m *Message) {
	if c.Title == "" && m.Role == RoleUser {
		c.Title = m.Content
	}
	c.Messages = append(c.Messages, m)
}

// Last returns the most recent message, or nil for an empty conversation.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}
