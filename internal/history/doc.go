// Package history persists a local record of agent invocations in SQLite.
//
// Each run of the wrapper appends one row: when it started, how it was
// dispatched, and how the agent exited. Recording is best-effort; a history
// failure never fails the run it describes.
package history
