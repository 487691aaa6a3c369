// internal/commands/chat.go
package council

import (
	"fmt"

	"github.com/councilchat/council/internal/chat"
	"github.com/councilchat/council/internal/tui"
	"github.com/spf13/cobra"
)

// startGUI is a function alias to tui.StartGUI for starting the chat interface.
var startGUI = tui.StartGUI

// chatCmd represents the 'chat' command, which starts an interactive
// council session.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a council chat session",
	Long:  `The 'chat' command starts an interactive session. Each question is answered by every configured council model, the models rank each other's anonymized answers, and the chairman model synthesizes the final reply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("no configuration loaded; see --config")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		chat.Run(cfg, startGUI)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
