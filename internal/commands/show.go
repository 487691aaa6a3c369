// internal/commands/show.go
package council

import (
	"github.com/spf13/cobra"
)

// showCmd groups the read-only inspection subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show application state",
	Long:  `The 'show' command groups subcommands that display configuration and application state without modifying anything.`,
}

func init() {
	rootCmd.AddCommand(showCmd)
}
