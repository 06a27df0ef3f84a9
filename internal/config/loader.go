package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Options controls where Load looks for configuration sources. The zero
// value uses the real user config location, the current working directory,
// and the process environment.
type Options struct {
	UserPath   string
	ProjectDir string
	LookupEnv  func(string) (string, bool)
	Logger     *slog.Logger
}

type entry struct {
	value  any
	source Source
}

// Load resolves configuration from defaults, the user file, the project
// file, and environment variables, in ascending precedence. The merge is
// field-granular: a layer only overrides the fields it defines. Any
// validation failure aborts the whole load; a partially valid configuration
// is never returned.
func Load(opts Options) (*Resolved, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	userPath := strings.TrimSpace(opts.UserPath)
	if userPath == "" {
		resolved, err := UserConfigPath()
		if err != nil {
			return nil, err
		}
		userPath = resolved
	}
	projectPath, err := ProjectConfigPath(opts.ProjectDir)
	if err != nil {
		return nil, err
	}

	values := make(map[string]entry, len(schemaFields))
	for _, field := range schemaFields {
		values[field.Name] = entry{value: field.Default, source: SourceDefault}
	}

	userDoc, userExists, err := readDocument(userPath)
	if err != nil {
		return nil, err
	}
	overlayDocument(values, userDoc, SourceUserFile, logger, userPath)

	projectDoc, projectExists, err := readDocument(projectPath)
	if err != nil {
		return nil, err
	}
	overlayDocument(values, projectDoc, SourceProjectFile, logger, projectPath)

	for _, field := range schemaFields {
		if field.EnvVar == "" {
			continue
		}
		if raw, ok := lookup(field.EnvVar); ok && strings.TrimSpace(raw) != "" {
			values[field.Name] = entry{value: raw, source: SourceEnvironment}
		}
	}

	resolved := &Resolved{
		origins:       make(map[string]Source, len(schemaFields)),
		userPath:      userPath,
		userExists:    userExists,
		projectPath:   projectPath,
		projectExists: projectExists,
	}
	for _, field := range schemaFields {
		if err := resolved.assign(field, values[field.Name]); err != nil {
			return nil, err
		}
		resolved.origins[field.Name] = values[field.Name].source
	}
	return resolved, nil
}

func readDocument(path string) (map[string]any, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &ParseError{Path: path, Err: err}
	}
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, true, &ParseError{Path: path, Err: err}
	}
	return doc, true, nil
}

// overlayDocument applies every schema field the document defines, one field
// at a time. Unknown keys are reported and skipped rather than failing the
// load.
func overlayDocument(values map[string]entry, doc map[string]any, source Source, logger *slog.Logger, path string) {
	if len(doc) == 0 {
		return
	}
	known := schemaFieldNames()

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			value := node[key]
			if _, ok := known[name]; ok {
				values[name] = entry{value: value, source: source}
				continue
			}
			if child, ok := value.(map[string]any); ok {
				walk(name, child)
				continue
			}
			logger.Warn("unknown configuration key",
				slog.String("key", name),
				slog.String("file", path),
			)
		}
	}
	walk("", doc)
}

func (r *Resolved) assign(field Field, e entry) error {
	switch field.Name {
	case FieldAgentBinary:
		value, err := coerceString(field, e)
		if err != nil {
			return err
		}
		r.Agent.Binary = value
	case FieldAgentModel:
		value, err := coerceString(field, e)
		if err != nil {
			return err
		}
		r.Agent.Model = value
	case FieldAgentMaxTokens:
		value, err := coerceInt(field, e)
		if err != nil {
			return err
		}
		r.Agent.MaxTokens = value
	case FieldAgentWorkspaceDir:
		value, err := coercePath(field, e)
		if err != nil {
			return err
		}
		r.Agent.WorkspaceDir = value
	case FieldAgentAPIKey:
		value, err := coerceString(field, e)
		if err != nil {
			return err
		}
		r.Agent.APIKey = value
	case FieldAgentTimeout:
		value, err := coerceInt(field, e)
		if err != nil {
			return err
		}
		r.Agent.TimeoutSeconds = value
	case FieldLoggingLevel:
		value, err := coerceString(field, e)
		if err != nil {
			return err
		}
		r.Logging.Level = value
	case FieldLoggingFormat:
		value, err := coerceString(field, e)
		if err != nil {
			return err
		}
		r.Logging.Format = value
	case FieldHistoryEnabled:
		value, err := coerceBool(field, e)
		if err != nil {
			return err
		}
		r.History.Enabled = value
	case FieldHistoryPath:
		value, err := coercePath(field, e)
		if err != nil {
			return err
		}
		r.History.Path = value
	default:
		return fmt.Errorf("unhandled schema field %q", field.Name)
	}
	return nil
}

func coerceString(field Field, e entry) (string, error) {
	raw, ok := e.value.(string)
	if !ok {
		return "", validationError(field, e, "must be a string")
	}
	value := strings.TrimSpace(raw)
	if len(field.Enum) > 0 {
		value = strings.ToLower(value)
		found := false
		for _, allowed := range field.Enum {
			if value == allowed {
				found = true
				break
			}
		}
		if !found {
			return "", validationError(field, e, "must be one of "+strings.Join(field.Enum, ", "))
		}
	}
	if field.Required && value == "" {
		return "", validationError(field, e, "must not be empty")
	}
	return value, nil
}

func coerceInt(field Field, e entry) (int, error) {
	var value int
	switch v := e.value.(type) {
	case int:
		value = v
	case int64:
		value = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, validationError(field, e, "must be an integer")
		}
		value = parsed
	default:
		return 0, validationError(field, e, "must be an integer")
	}
	if value < field.Min || value > field.Max {
		return 0, validationError(field, e, fmt.Sprintf("must be between %d and %d", field.Min, field.Max))
	}
	return value, nil
}

func coerceBool(field Field, e entry) (bool, error) {
	switch v := e.value.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, validationError(field, e, "must be a boolean")
		}
		return parsed, nil
	default:
		return false, validationError(field, e, "must be a boolean")
	}
}

func coercePath(field Field, e entry) (string, error) {
	raw, ok := e.value.(string)
	if !ok {
		return "", validationError(field, e, "must be a path string")
	}
	value := strings.TrimSpace(raw)
	if field.Required && value == "" {
		return "", validationError(field, e, "must not be empty")
	}
	if value == "" {
		return "", nil
	}
	expanded, err := expandPath(value)
	if err != nil {
		return "", validationError(field, e, fmt.Sprintf("invalid path: %v", err))
	}
	return expanded, nil
}

func validationError(field Field, e entry, reason string) error {
	return &ValidationError{
		Field:  field.Name,
		Source: e.source,
		Value:  fmt.Sprintf("%v", e.value),
		Reason: reason,
	}
}
