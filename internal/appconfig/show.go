package appconfig

import (
	"fmt"
	"io"
	"strings"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fmt.Fprintf(out, "  Debug:          %v\n", fallback.Debug)
		fmt.Fprintf(out, "  Backend URL:    %s\n", fallback.Backend())
		fmt.Fprintf(out, "  API Key Env:    %s\n", fallback.APIKeyEnv)
		return
	}

	fmt.Fprintf(out, "  Debug:          %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Backend URL:    %s\n", cfg.Backend())
	fmt.Fprintf(out, "  API Key Env:    %s\n", cfg.APIKeyEnv)
	fmt.Fprintf(out, "  Council:        %s\n", strings.Join(cfg.CouncilModels, ", "))
	fmt.Fprintf(out, "  Chairman:       %s\n", cfg.ChairmanModel)
	fmt.Fprintf(out, "  Timeout:        %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:       %s\n", cfg.LogFilePath())
}
