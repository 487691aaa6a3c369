// internal/commands/list.go
package council

import (
	"github.com/spf13/cobra"
)

// listCmd groups the enumeration subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List application resources",
	Long:  `The 'list' command groups subcommands that enumerate configured resources such as the council roster and the available commands.`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
