// internal/commands/list_models.go
package council

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	chairmanMark = color.New(color.FgGreen).SprintFunc()
	memberMark   = color.New(color.FgCyan).SprintFunc()
)

// listModelsCmd implements 'list models', which prints the configured
// council roster and marks the chairman.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the configured council models",
	Long:  `The 'models' subcommand lists the council models from the configuration file and marks which one acts as chairman for the synthesis stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("no configuration loaded; see --config")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Council roster (%d models):\n", len(cfg.CouncilModels))
		for _, m := range cfg.CouncilModels {
			fmt.Fprintf(out, "  %s\n", memberMark(m))
		}
		fmt.Fprintf(out, "Chairman: %s\n", chairmanMark(cfg.ChairmanModel))
		return nil
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
}
