// internal/commands/show_config.go
package council

import (
	"github.com/councilchat/council/internal/appconfig"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Debug:          viper.GetBool("debug"),
			BackendURL:     viper.GetString("backendUrl"),
			TimeoutSeconds: viper.GetInt("timeout"),
			LogFile:        viper.GetString("logFile"),
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig(), fallback)

		if DebugEnabled() {
			_, _ = pp.Fprintln(cmd.OutOrStdout(), GetConfig())
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
