package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// schemaEnvVars covers every environment variable the loader consults.
// Tests blank them so values from the host environment cannot leak in.
var schemaEnvVars = []string{
	"OPENCODE_BIN",
	"OPENCODE_MODEL",
	"OPENCODE_MAX_TOKENS",
	"OPENCODE_WORKSPACE_DIR",
	"OPENCODE_API_KEY",
	"OCWRAP_TIMEOUT_SECONDS",
	"OCWRAP_LOG_LEVEL",
	"OCWRAP_LOG_FORMAT",
	"OCWRAP_HISTORY",
	"OCWRAP_HISTORY_PATH",
}

type cliTestEnv struct {
	homeDir    string
	projectDir string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	projectDir := filepath.Join(base, "project")
	for _, dir := range []string{homeDir, projectDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", homeDir)
	for _, key := range schemaEnvVars {
		t.Setenv(key, "")
	}
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(projectDir); err != nil {
		t.Fatalf("chdir %s: %v", projectDir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prevDir); err != nil {
			t.Fatalf("restore wd %s: %v", prevDir, err)
		}
	})

	return &cliTestEnv{
		homeDir:    homeDir,
		projectDir: projectDir,
		configPath: filepath.Join(homeDir, ".config", "ocwrap", "config.toml"),
	}
}

func (env *cliTestEnv) writeUserConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) writeProjectConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(env.projectDir, ".ocwrap.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
}

// writeAgentScript installs a shell script standing in for the agent binary
// and returns its path.
func writeAgentScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-opencode")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write agent script: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix shell")
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
