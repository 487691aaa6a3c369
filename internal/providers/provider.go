// internal/providers/provider.go

// Package providers defines the interface between the UI and the deliberation
// backend. A provider runs one assistant turn through the three council
// phases and reports each phase back through callbacks, in order: stage 1
// loading, stage 1 data, stage 2 loading, stage 2 data, stage 3 loading,
// stage 3 data. Cancelling the context stops the turn after the phase in
// flight; Deliberate then returns the context error.
package providers

import (
	"context"

	"github.com/councilchat/council/internal/council"
)

// ChatMessage is one entry of the flattened conversation history sent to
// the backend: user prompts and the final synthesized answers of prior
// turns. Intermediate stage data never re-enters the history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one deliberation turn.
type Request struct {
	// History holds the prior conversation, oldest first, ending with the
	// user prompt for this turn.
	History []ChatMessage
}

// Callbacks receive phase results as they are produced. All callbacks are
// invoked from the goroutine running Deliberate; nil callbacks are skipped.
type Callbacks struct {
	OnStageLoading func(stage council.Stage)
	OnStage1       func(responses []council.Stage1Response)
	OnStage2       func(rankings []council.Stage2Ranking, meta council.Metadata)
	OnStage3       func(final council.Stage3Response)
}

// CouncilProvider runs assistant turns against a deliberation backend.
type CouncilProvider interface {
	// Deliberate runs the three phases for the prompt at the end of
	// req.History, invoking callbacks as each phase completes.
	Deliberate(ctx context.Context, req Request, cb Callbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}
