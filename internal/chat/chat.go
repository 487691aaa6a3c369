// internal/chat/chat.go
// Package chat starts the interactive council session.
package chat

import (
	"context"

	"github.com/councilchat/council/internal/appconfig"
)

// Run starts the chat UI with a cancellable root context. The context is the
// parent of every backend request the session makes; cancelling it on the
// way out releases any in-flight deliberation.
func Run(
	cfg *appconfig.Config,
	startGUI func(context.Context, *appconfig.Config, context.CancelFunc),
) {
	ctx, cancel := context.WithCancel(context.Background())
	startGUI(ctx, cfg, cancel)
}
