// internal/commands/root_flags_test.go
package council

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/councilchat/council/internal/logging"
	"github.com/spf13/viper"
)

func resetFlag(cmdFlag string) {
	flag := rootCmd.PersistentFlags().Lookup(cmdFlag)
	if flag == nil {
		return
	}
	_ = flag.Value.Set(flag.DefValue)
	flag.Changed = false
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `{
  "councilModels": ["openai/gpt-5.1", "anthropic/claude-sonnet-4.5"],
  "chairmanModel": "anthropic/claude-sonnet-4.5"
}`

func useConfig(t *testing.T, path string) {
	t.Helper()
	prevCfgFile := cfgFile
	cfgFile = path
	viper.SetConfigFile(path)
	t.Cleanup(func() {
		cfgFile = prevCfgFile
		viper.SetConfigFile(prevCfgFile)
	})
	t.Cleanup(func() { _ = logging.Close() })
}

func TestPersistentPreRunEUsesFlagValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "council.log")
	useConfig(t, writeTempConfig(t, validConfig))

	for _, name := range []string{"debug", "backendUrl", "timeout", "logFile"} {
		resetFlag(name)
	}
	_ = rootCmd.PersistentFlags().Set("debug", "true")
	_ = rootCmd.PersistentFlags().Set("backendUrl", "http://localhost:9090/v1")
	_ = rootCmd.PersistentFlags().Set("timeout", "42")
	_ = rootCmd.PersistentFlags().Set("logFile", logPath)

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	if currentConfig == nil || currentConfig.ConfigPath != cfgFile {
		t.Fatalf("expected config loaded with path %s", cfgFile)
	}
	if !currentConfig.Debug {
		t.Fatalf("expected debug flag to flow into config: %+v", currentConfig)
	}
	if currentConfig.Backend() != "http://localhost:9090/v1" {
		t.Fatalf("expected backendUrl set, got %s", currentConfig.Backend())
	}
	if currentConfig.TimeoutSeconds != 42 {
		t.Fatalf("expected timeout set, got %d", currentConfig.TimeoutSeconds)
	}
	if len(currentConfig.CouncilModels) != 2 {
		t.Fatalf("expected roster from config file, got %+v", currentConfig.CouncilModels)
	}
}

func TestPersistentPreRunEKeepsFileValues(t *testing.T) {
	useConfig(t, writeTempConfig(t, `{
  "councilModels": ["a/one", "b/two", "c/three"],
  "chairmanModel": "b/two",
  "timeout": 120
}`))

	for _, name := range []string{"debug", "backendUrl", "timeout", "logFile"} {
		resetFlag(name)
	}
	_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "council.log"))

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}
	if currentConfig.TimeoutSeconds != 120 {
		t.Fatalf("expected file timeout preserved, got %d", currentConfig.TimeoutSeconds)
	}
	if currentConfig.ChairmanModel != "b/two" {
		t.Fatalf("expected chairman from file, got %s", currentConfig.ChairmanModel)
	}
}

func TestShowConfigCommandOutput(t *testing.T) {
	useConfig(t, writeTempConfig(t, validConfig))

	for _, name := range []string{"debug", "backendUrl", "timeout", "logFile"} {
		resetFlag(name)
	}
	_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "council.log"))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"show", "config"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Config file: "+cfgFile) {
		t.Fatalf("expected config file path in output, got %s", out)
	}
	if !strings.Contains(out, "anthropic/claude-sonnet-4.5") {
		t.Fatalf("expected chairman in output, got %s", out)
	}
}

func TestListModelsCommandOutput(t *testing.T) {
	useConfig(t, writeTempConfig(t, validConfig))

	for _, name := range []string{"debug", "backendUrl", "timeout", "logFile"} {
		resetFlag(name)
	}
	_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "council.log"))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"list", "models"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Council roster (2 models):") {
		t.Fatalf("expected roster header, got %s", out)
	}
	if !strings.Contains(out, "Chairman:") {
		t.Fatalf("expected chairman line, got %s", out)
	}
}

func TestChatCommandRejectsInvalidRoster(t *testing.T) {
	useConfig(t, writeTempConfig(t, `{"councilModels": ["only/one"], "chairmanModel": "only/one"}`))

	for _, name := range []string{"debug", "backendUrl", "timeout", "logFile"} {
		resetFlag(name)
	}
	_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "council.log"))

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}
	if err := chatCmd.RunE(chatCmd, []string{}); err == nil {
		t.Fatal("expected error for a single-model roster")
	}
}
