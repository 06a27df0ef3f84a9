package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"ocwrap/internal/config"
	"ocwrap/internal/logging"
)

// Mode selects how the child's standard streams are wired.
type Mode int

const (
	// ModeInteractive inherits the wrapper's stdin/stdout/stderr.
	ModeInteractive Mode = iota
	// ModeCaptured buffers stdout and stderr and leaves stdin disconnected
	// unless input is supplied.
	ModeCaptured
)

func (m Mode) String() string {
	if m == ModeCaptured {
		return "captured"
	}
	return "interactive"
}

// Options configures a single dispatch.
type Options struct {
	Mode    Mode
	Timeout time.Duration
	// Stdin is fed to the child in captured mode when non-empty.
	Stdin []byte
}

// Result reports how the agent process ended. Nonzero exit codes live here,
// not in an error.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Aborted marks termination by signal rather than a normal exit.
	Aborted bool
}

// Dispatcher turns resolved configuration plus arguments into a supervised
// agent process.
type Dispatcher struct {
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// New constructs a dispatcher. A nil logger discards dispatch logs.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{logger: logger, lookPath: exec.LookPath}
}

// ResolveExecutable locates the agent binary. A configured value containing
// a path separator is treated as an explicit path and must exist and be
// executable; a bare name is searched on PATH. Failure is a *LaunchError and
// happens before any process is spawned.
func (d *Dispatcher) ResolveExecutable(cfg *config.Resolved) (string, error) {
	binary := strings.TrimSpace(cfg.Agent.Binary)
	if binary == "" {
		return "", &LaunchError{Binary: binary, Err: errors.New("agent binary not configured")}
	}

	if strings.ContainsAny(binary, `/\`) {
		expanded, err := config.ExpandPath(binary)
		if err != nil {
			return "", &LaunchError{Binary: binary, Err: err}
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return "", &LaunchError{Binary: expanded, Err: err}
		}
		if info.IsDir() {
			return "", &LaunchError{Binary: expanded, Err: errors.New("is a directory")}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return "", &LaunchError{Binary: expanded, Err: errors.New("not executable")}
		}
		return expanded, nil
	}

	path, err := d.lookPath(binary)
	if err != nil {
		return "", &LaunchError{Binary: binary, Err: err}
	}
	return path, nil
}

// Run launches the agent and blocks until it exits, the timeout fires, or
// ctx is cancelled. Cancellation and timeout both terminate the child's
// whole process group before returning.
func (d *Dispatcher) Run(ctx context.Context, cfg *config.Resolved, args []string, opts Options) (*Result, error) {
	executable, err := d.ResolveExecutable(cfg)
	if err != nil {
		return nil, err
	}

	spec := newSpec(cfg, executable, args)
	if spec.Dir != "" {
		if err := os.MkdirAll(spec.Dir, 0o755); err != nil {
			return nil, &LaunchError{Binary: executable, Err: fmt.Errorf("create workspace %q: %w", spec.Dir, err)}
		}
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.SysProcAttr = sysProcAttr(opts.Mode)

	var stdout, stderr bytes.Buffer
	switch opts.Mode {
	case ModeCaptured:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if len(opts.Stdin) > 0 {
			cmd.Stdin = bytes.NewReader(opts.Stdin)
		}
	default:
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	d.logger.Debug("launching agent",
		logging.String("executable", spec.Path),
		logging.String("mode", opts.Mode.String()),
		logging.Int("args", len(spec.Args)),
		logging.Duration("timeout", opts.Timeout),
	)

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Binary: executable, Err: err}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var timeoutCh <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case waitErr := <-waitCh:
		return d.finish(executable, waitErr, &stdout, &stderr, opts.Mode)
	case <-ctx.Done():
		d.logger.Warn("interrupt received, terminating agent",
			logging.String("executable", spec.Path))
		d.terminate(cmd, waitCh)
		return nil, ctx.Err()
	case <-timeoutCh:
		d.terminate(cmd, waitCh)
		return nil, &TimeoutError{Timeout: opts.Timeout, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	}
}

// terminate asks the child to exit and blocks until it has been reaped.
// SIGKILL is sent only if the child outlives the grace period, so the
// escalation never outlasts the Run call that started it.
func (d *Dispatcher) terminate(cmd *exec.Cmd, waitCh <-chan error) {
	signalChild(cmd, syscall.SIGTERM)
	grace := time.NewTimer(termGrace)
	defer grace.Stop()
	select {
	case <-waitCh:
		return
	case <-grace.C:
	}
	signalChild(cmd, syscall.SIGKILL)
	<-waitCh
}

func (d *Dispatcher) finish(executable string, waitErr error, stdout, stderr *bytes.Buffer, mode Mode) (*Result, error) {
	result := &Result{}
	if mode == ModeCaptured {
		result.Stdout = stdout.Bytes()
		result.Stderr = stderr.Bytes()
	}
	if waitErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Aborted = exitedBySignal(exitErr)
		return result, nil
	}
	return nil, &LaunchError{Binary: executable, Err: waitErr}
}
