package config

import "fmt"

// Source identifies the layer that supplied a field's final value.
// Layers are ordered by ascending precedence.
type Source int

const (
	SourceDefault Source = iota
	SourceUserFile
	SourceProjectFile
	SourceEnvironment
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceUserFile:
		return "user-file"
	case SourceProjectFile:
		return "project-file"
	case SourceEnvironment:
		return "environment"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseError reports a configuration source document that could not be read
// as TOML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a field whose merged value failed type coercion or
// bounds checking. Validation failure aborts the entire load.
type ValidationError struct {
	Field  string
	Source Source
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %q from %s)", e.Field, e.Reason, e.Value, e.Source)
}

// InitError reports a failure to write the sample configuration file.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init config %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
