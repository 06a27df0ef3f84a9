// Package logging builds slog loggers for the ocwrap CLI.
//
// Two output formats are supported: a compact console format for humans and
// line-delimited JSON for machine consumption. All wrapper logs go to stderr
// so that captured agent stdout can be relayed verbatim on stdout.
package logging
