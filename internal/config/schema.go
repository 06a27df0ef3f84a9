package config

// Kind is the declared type of a configuration field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindPath
)

// Field declares one recognized configuration field: its TOML name, type,
// default, bounds, and the environment variable that overrides it.
type Field struct {
	Name    string
	Kind    Kind
	Default any
	EnvVar  string

	// Min and Max bound KindInt fields (inclusive).
	Min int
	Max int

	// Enum restricts KindString fields to a fixed value set.
	Enum []string

	// Required rejects empty strings after trimming.
	Required bool

	// Secret fields are forwarded to the agent via its environment, never
	// via the argument vector, and are redacted in display output.
	Secret bool

	// Flag is the agent CLI flag the field is forwarded as. Empty means the
	// field exists for wrapper bookkeeping only and is never forwarded.
	Flag string
}

// Field names, in schema order.
const (
	FieldAgentBinary       = "agent.binary"
	FieldAgentModel        = "agent.model"
	FieldAgentMaxTokens    = "agent.max_tokens"
	FieldAgentWorkspaceDir = "agent.workspace_dir"
	FieldAgentAPIKey       = "agent.api_key"
	FieldAgentTimeout      = "agent.timeout_seconds"
	FieldLoggingLevel      = "logging.level"
	FieldLoggingFormat     = "logging.format"
	FieldHistoryEnabled    = "history.enabled"
	FieldHistoryPath       = "history.path"
)

const (
	defaultAgentBinary    = "opencode"
	defaultAgentModel     = "gpt-4"
	defaultAgentMaxTokens = 4096
	defaultWorkspaceDir   = "~/opencode-workspace"
	defaultHistoryPath    = "~/.local/share/ocwrap/history.db"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"

	minMaxTokens      = 1
	maxMaxTokens      = 32000
	maxTimeoutSeconds = 86400

	// AgentAPIKeyEnv is both the override read by the loader and the variable
	// the dispatcher injects into the agent's environment.
	AgentAPIKeyEnv = "OPENCODE_API_KEY"
)

var schemaFields = []Field{
	{Name: FieldAgentBinary, Kind: KindString, Default: defaultAgentBinary, EnvVar: "OPENCODE_BIN", Required: true},
	{Name: FieldAgentModel, Kind: KindString, Default: defaultAgentModel, EnvVar: "OPENCODE_MODEL", Required: true, Flag: "--model"},
	{Name: FieldAgentMaxTokens, Kind: KindInt, Default: defaultAgentMaxTokens, EnvVar: "OPENCODE_MAX_TOKENS", Min: minMaxTokens, Max: maxMaxTokens, Flag: "--max-tokens"},
	{Name: FieldAgentWorkspaceDir, Kind: KindPath, Default: defaultWorkspaceDir, EnvVar: "OPENCODE_WORKSPACE_DIR", Required: true, Flag: "--workspace"},
	{Name: FieldAgentAPIKey, Kind: KindString, Default: "", EnvVar: AgentAPIKeyEnv, Secret: true},
	{Name: FieldAgentTimeout, Kind: KindInt, Default: 0, EnvVar: "OCWRAP_TIMEOUT_SECONDS", Min: 0, Max: maxTimeoutSeconds},
	{Name: FieldLoggingLevel, Kind: KindString, Default: defaultLogLevel, EnvVar: "OCWRAP_LOG_LEVEL", Enum: []string{"debug", "info", "warn", "error"}},
	{Name: FieldLoggingFormat, Kind: KindString, Default: defaultLogFormat, EnvVar: "OCWRAP_LOG_FORMAT", Enum: []string{"console", "json"}},
	{Name: FieldHistoryEnabled, Kind: KindBool, Default: true, EnvVar: "OCWRAP_HISTORY"},
	{Name: FieldHistoryPath, Kind: KindPath, Default: defaultHistoryPath, EnvVar: "OCWRAP_HISTORY_PATH", Required: true},
}

// Schema returns the declared configuration fields in display order.
func Schema() []Field {
	fields := make([]Field, len(schemaFields))
	copy(fields, schemaFields)
	return fields
}

func schemaFieldNames() map[string]struct{} {
	names := make(map[string]struct{}, len(schemaFields))
	for _, field := range schemaFields {
		names[field.Name] = struct{}{}
	}
	return names
}
