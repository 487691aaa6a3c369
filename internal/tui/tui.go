// internal/tui/tui.go
package tui

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/councilchat/council/internal/appconfig"
	"github.com/councilchat/council/internal/logging"
	"github.com/councilchat/council/internal/providers/openrouter"
)

// StartGUI initializes and runs the interactive council chat TUI. It blocks
// until the UI exits and cancels any in-flight backend requests on the way
// out.
func StartGUI(ctx context.Context, cfg *appconfig.Config, cancel context.CancelFunc) {
	defer func() {
		logging.LogEvent("cancelling all running requests...")
		cancel()
	}()

	if cfg == nil {
		log.Fatalf("Failed to start: configuration is not loaded")
	}

	provider := openrouter.New(cfg)
	defer func() {
		if err := provider.Close(); err != nil {
			logging.LogEvent("provider shutdown error: %v", err)
		}
	}()

	m := initialModel(ctx, cfg, provider)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
