package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ocwrap/internal/config"
	"ocwrap/internal/logging"
)

func envFromMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func loadOpts(t *testing.T, env map[string]string) config.Options {
	t.Helper()
	tmp := t.TempDir()
	return config.Options{
		UserPath:   filepath.Join(tmp, "user", "config.toml"),
		ProjectDir: tmp,
		LookupEnv:  envFromMap(env),
	}
}

func TestLoadDefaultsWhenNoSourcesPresent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(loadOpts(t, nil))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Agent.Binary != "opencode" {
		t.Fatalf("unexpected binary: %q", cfg.Agent.Binary)
	}
	if cfg.Agent.Model != "gpt-4" {
		t.Fatalf("unexpected model: %q", cfg.Agent.Model)
	}
	if cfg.Agent.MaxTokens != 4096 {
		t.Fatalf("unexpected max tokens: %d", cfg.Agent.MaxTokens)
	}
	home, _ := os.UserHomeDir()
	if cfg.Agent.WorkspaceDir != filepath.Join(home, "opencode-workspace") {
		t.Fatalf("expected expanded workspace dir, got %q", cfg.Agent.WorkspaceDir)
	}
	if !filepath.IsAbs(cfg.History.Path) {
		t.Fatalf("expected absolute history path, got %q", cfg.History.Path)
	}
	if cfg.Agent.TimeoutSeconds != 0 {
		t.Fatalf("expected timeout disabled by default, got %d", cfg.Agent.TimeoutSeconds)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	for _, field := range cfg.Fields() {
		if field.Source != config.SourceDefault {
			t.Fatalf("field %s attributed to %s, want default", field.Name, field.Source)
		}
	}
}

func TestLayerPrecedenceEnvOverProjectOverUserOverDefault(t *testing.T) {
	opts := loadOpts(t, map[string]string{"OPENCODE_MODEL": "env-model"})
	if err := os.MkdirAll(filepath.Dir(opts.UserPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, opts.UserPath, "[agent]\nmodel = \"user-model\"\n")
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"), "[agent]\nmodel = \"project-model\"\n")

	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.Model != "env-model" {
		t.Fatalf("expected environment to win, got %q", cfg.Agent.Model)
	}
	if cfg.Origin(config.FieldAgentModel) != config.SourceEnvironment {
		t.Fatalf("unexpected origin: %s", cfg.Origin(config.FieldAgentModel))
	}

	// Remove the env override: project file wins.
	opts.LookupEnv = envFromMap(nil)
	cfg, err = config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.Model != "project-model" {
		t.Fatalf("expected project file to win, got %q", cfg.Agent.Model)
	}
	if cfg.Origin(config.FieldAgentModel) != config.SourceProjectFile {
		t.Fatalf("unexpected origin: %s", cfg.Origin(config.FieldAgentModel))
	}

	// Remove the project file: user file wins.
	if err := os.Remove(filepath.Join(opts.ProjectDir, ".ocwrap.toml")); err != nil {
		t.Fatalf("remove project file: %v", err)
	}
	cfg, err = config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.Model != "user-model" {
		t.Fatalf("expected user file to win, got %q", cfg.Agent.Model)
	}
	if cfg.Origin(config.FieldAgentModel) != config.SourceUserFile {
		t.Fatalf("unexpected origin: %s", cfg.Origin(config.FieldAgentModel))
	}

	// Remove the user file: default remains.
	if err := os.Remove(opts.UserPath); err != nil {
		t.Fatalf("remove user file: %v", err)
	}
	cfg, err = config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.Model != "gpt-4" {
		t.Fatalf("expected default, got %q", cfg.Agent.Model)
	}
	if cfg.Origin(config.FieldAgentModel) != config.SourceDefault {
		t.Fatalf("unexpected origin: %s", cfg.Origin(config.FieldAgentModel))
	}
}

func TestFieldLevelMergeAcrossFiles(t *testing.T) {
	opts := loadOpts(t, nil)
	if err := os.MkdirAll(filepath.Dir(opts.UserPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, opts.UserPath, "[agent]\nmodel = \"user-model\"\n")
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"), "[agent]\nmax_tokens = 512\n")

	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.Model != "user-model" {
		t.Fatalf("expected user model to survive, got %q", cfg.Agent.Model)
	}
	if cfg.Agent.MaxTokens != 512 {
		t.Fatalf("expected project max_tokens to apply, got %d", cfg.Agent.MaxTokens)
	}
	if cfg.Origin(config.FieldAgentModel) != config.SourceUserFile {
		t.Fatalf("model origin: %s", cfg.Origin(config.FieldAgentModel))
	}
	if cfg.Origin(config.FieldAgentMaxTokens) != config.SourceProjectFile {
		t.Fatalf("max_tokens origin: %s", cfg.Origin(config.FieldAgentMaxTokens))
	}
}

func TestMaxTokensBoundsAbortResolution(t *testing.T) {
	for _, value := range []string{"0", "32001"} {
		opts := loadOpts(t, map[string]string{"OPENCODE_MAX_TOKENS": value})
		_, err := config.Load(opts)
		if err == nil {
			t.Fatalf("expected error for max_tokens=%s", value)
		}
		var verr *config.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %T: %v", err, err)
		}
		if verr.Field != config.FieldAgentMaxTokens {
			t.Fatalf("error names field %q", verr.Field)
		}
		if verr.Source != config.SourceEnvironment {
			t.Fatalf("error attributes source %s", verr.Source)
		}
	}
}

func TestNonIntegerEnvValueRejected(t *testing.T) {
	opts := loadOpts(t, map[string]string{"OPENCODE_MAX_TOKENS": "plenty"})
	_, err := config.Load(opts)
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Value != "plenty" {
		t.Fatalf("error should carry received value, got %q", verr.Value)
	}
}

func TestWrongTypeInFileRejected(t *testing.T) {
	opts := loadOpts(t, nil)
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"), "[agent]\nmodel = 42\n")

	_, err := config.Load(opts)
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != config.FieldAgentModel || verr.Source != config.SourceProjectFile {
		t.Fatalf("unexpected attribution: %v", verr)
	}
}

func TestMalformedTOMLIsParseError(t *testing.T) {
	opts := loadOpts(t, nil)
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"), "agent = {{\n")

	_, err := config.Load(opts)
	var perr *config.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestUnknownKeysWarnButDoNotFail(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	opts := loadOpts(t, nil)
	opts.Logger = logger
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"),
		"[agent]\nmodel = \"m1\"\ncolour = \"red\"\n\n[telemetry]\nendpoint = \"nope\"\n")

	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.Model != "m1" {
		t.Fatalf("known key should still apply, got %q", cfg.Agent.Model)
	}
	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("agent.colour")) {
		t.Fatalf("expected warning for agent.colour, got %q", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("telemetry.endpoint")) {
		t.Fatalf("expected warning for telemetry.endpoint, got %q", out)
	}
}

func TestWorkspaceDirExpandsTildeAndEnvRefs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OCWRAP_TEST_SUBDIR", "nested")

	opts := loadOpts(t, nil)
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"),
		"[agent]\nworkspace_dir = \"~/work/$OCWRAP_TEST_SUBDIR\"\n")

	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := filepath.Join(home, "work", "nested")
	if cfg.Agent.WorkspaceDir != want {
		t.Fatalf("workspace dir: got %q want %q", cfg.Agent.WorkspaceDir, want)
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	opts := loadOpts(t, map[string]string{"OPENCODE_MAX_TOKENS": "2048"})
	writeFile(t, filepath.Join(opts.ProjectDir, ".ocwrap.toml"), "[agent]\nmodel = \"m2\"\n")

	first, err := config.Load(opts)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := config.Load(opts)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first.Agent != second.Agent || first.Logging != second.Logging || first.History != second.History {
		t.Fatalf("identical inputs produced different configs:\n%+v\n%+v", first, second)
	}
	firstFields := first.Fields()
	secondFields := second.Fields()
	for i := range firstFields {
		if firstFields[i] != secondFields[i] {
			t.Fatalf("provenance differs for %s", firstFields[i].Name)
		}
	}
}

func TestSecretsRedactedInFieldListing(t *testing.T) {
	opts := loadOpts(t, map[string]string{"OPENCODE_API_KEY": "sk-secret"})

	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.APIKey != "sk-secret" {
		t.Fatalf("expected key available to dispatcher, got %q", cfg.Agent.APIKey)
	}
	for _, field := range cfg.Fields() {
		if field.Name != config.FieldAgentAPIKey {
			continue
		}
		if field.Value != "(redacted)" {
			t.Fatalf("expected redacted display value, got %q", field.Value)
		}
		if field.Source != config.SourceEnvironment {
			t.Fatalf("unexpected source: %s", field.Source)
		}
	}
}
