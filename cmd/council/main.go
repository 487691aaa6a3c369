// cmd/council/main.go
package main

import (
	cmd "github.com/councilchat/council/internal/commands"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the council CLI application by delegating to the cobra root
// command defined in the commands package.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
