package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ocwrap/internal/config"
	"ocwrap/internal/dispatch"
)

// Reserved wrapper exit codes. The agent's own exit code is propagated
// verbatim, so wrapper failures use codes the front-end documents.
const (
	exitFailure     = 1
	exitConfigError = 2
	exitLaunchError = 3
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
	os.Exit(0)
}

func exitCodeFor(err error) int {
	var childErr *childExitError
	if errors.As(err, &childErr) {
		// Already reported through the child's own streams. A child killed
		// by a signal reports -1, which os.Exit cannot carry.
		if childErr.code < 0 {
			return exitFailure
		}
		return childErr.code
	}

	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}

	var parseErr *config.ParseError
	var validationErr *config.ValidationError
	var initErr *config.InitError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) || errors.As(err, &initErr) {
		return exitConfigError
	}

	var launchErr *dispatch.LaunchError
	var timeoutErr *dispatch.TimeoutError
	if errors.As(err, &launchErr) || errors.As(err, &timeoutErr) {
		return exitLaunchError
	}

	return exitFailure
}

// childExitError propagates a nonzero agent exit code without treating it as
// a wrapper failure.
type childExitError struct {
	code int
}

func (e *childExitError) Error() string {
	return fmt.Sprintf("agent exited with code %d", e.code)
}
