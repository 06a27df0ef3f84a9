package dispatch

import (
	"fmt"
	"time"
)

// LaunchError reports that the agent executable could not be located or
// spawned. It is always raised before a usable child process exists.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch agent %q: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// TimeoutError reports that the child exceeded the configured duration and
// was terminated. Output captured up to the kill is attached for diagnosis.
type TimeoutError struct {
	Timeout time.Duration
	Stdout  []byte
	Stderr  []byte
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent exceeded timeout of %s; terminated", e.Timeout)
}
