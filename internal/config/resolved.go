package config

import (
	"strconv"
	"time"
)

// Agent contains settings for the wrapped opencode executable.
type Agent struct {
	Binary         string
	Model          string
	MaxTokens      int
	WorkspaceDir   string
	APIKey         string
	TimeoutSeconds int
}

// Logging contains wrapper log output settings.
type Logging struct {
	Level  string
	Format string
}

// History contains invocation history store settings.
type History struct {
	Enabled bool
	Path    string
}

// Resolved is the immutable merged configuration plus per-field provenance.
// It is constructed once per invocation by Load and never mutated.
type Resolved struct {
	Agent   Agent
	Logging Logging
	History History

	origins       map[string]Source
	userPath      string
	userExists    bool
	projectPath   string
	projectExists bool
}

// Origin reports which source layer supplied the field's final value.
func (r *Resolved) Origin(field string) Source {
	return r.origins[field]
}

// Timeout returns the configured agent timeout, zero when disabled.
func (r *Resolved) Timeout() time.Duration {
	return time.Duration(r.Agent.TimeoutSeconds) * time.Second
}

// UserFile returns the user-scoped config location and whether it existed at
// load time.
func (r *Resolved) UserFile() (string, bool) {
	return r.userPath, r.userExists
}

// ProjectFile returns the project-scoped config location and whether it
// existed at load time.
func (r *Resolved) ProjectFile() (string, bool) {
	return r.projectPath, r.projectExists
}

// ForwardedFlags returns the agent CLI flags derived from fields the schema
// marks as externally visible, in schema order. Bookkeeping fields never
// appear here.
func (r *Resolved) ForwardedFlags() []string {
	flags := make([]string, 0, 8)
	for _, field := range schemaFields {
		if field.Flag == "" {
			continue
		}
		flags = append(flags, field.Flag, r.rawValue(field.Name))
	}
	return flags
}

// SecretEnv returns NAME=value pairs for secret fields that are set, so
// credentials reach the agent without appearing in its argument vector.
func (r *Resolved) SecretEnv() []string {
	pairs := make([]string, 0, 1)
	for _, field := range schemaFields {
		if !field.Secret {
			continue
		}
		if value := r.rawValue(field.Name); value != "" {
			pairs = append(pairs, field.EnvVar+"="+value)
		}
	}
	return pairs
}

// FieldValue is one resolved field prepared for display. Secret values are
// already redacted.
type FieldValue struct {
	Name   string
	Value  string
	Source Source
	Secret bool
}

// Fields returns every resolved field with its provenance, in schema order.
func (r *Resolved) Fields() []FieldValue {
	out := make([]FieldValue, 0, len(schemaFields))
	for _, field := range schemaFields {
		fv := FieldValue{
			Name:   field.Name,
			Value:  r.displayValue(field),
			Source: r.origins[field.Name],
			Secret: field.Secret,
		}
		out = append(out, fv)
	}
	return out
}

func (r *Resolved) displayValue(field Field) string {
	raw := r.rawValue(field.Name)
	if field.Secret {
		if raw == "" {
			return "(unset)"
		}
		return "(redacted)"
	}
	return raw
}

func (r *Resolved) rawValue(name string) string {
	switch name {
	case FieldAgentBinary:
		return r.Agent.Binary
	case FieldAgentModel:
		return r.Agent.Model
	case FieldAgentMaxTokens:
		return strconv.Itoa(r.Agent.MaxTokens)
	case FieldAgentWorkspaceDir:
		return r.Agent.WorkspaceDir
	case FieldAgentAPIKey:
		return r.Agent.APIKey
	case FieldAgentTimeout:
		return strconv.Itoa(r.Agent.TimeoutSeconds)
	case FieldLoggingLevel:
		return r.Logging.Level
	case FieldLoggingFormat:
		return r.Logging.Format
	case FieldHistoryEnabled:
		return strconv.FormatBool(r.History.Enabled)
	case FieldHistoryPath:
		return r.History.Path
	default:
		return ""
	}
}
