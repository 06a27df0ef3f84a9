package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ocwrap/internal/config"
	"ocwrap/internal/dispatch"
	"ocwrap/internal/history"
	"ocwrap/internal/logging"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var nonInteractive bool
	var timeoutFlag time.Duration

	cmd := &cobra.Command{
		Use:   "run [-- agent arguments...]",
		Short: "Launch the opencode agent with managed configuration",
		Long: `Launch the opencode agent with the resolved configuration.

Arguments after -- are passed through to the agent untouched, after the
flags derived from configuration (--model, --max-tokens, --workspace).`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := cctx.log()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mode := dispatch.ModeInteractive
			if nonInteractive {
				mode = dispatch.ModeCaptured
			}
			timeout := cfg.Timeout()
			if cmd.Flags().Changed("timeout") {
				timeout = timeoutFlag
			}

			dispatcher := dispatch.New(logger)
			runID := uuid.NewString()
			started := time.Now()
			result, runErr := dispatcher.Run(ctx, cfg, args, dispatch.Options{Mode: mode, Timeout: timeout})
			recordRun(cfg, logger, runID, started, mode, args, result, runErr)

			if runErr != nil {
				return runErr
			}

			if mode == dispatch.ModeCaptured {
				if len(result.Stdout) > 0 {
					_, _ = cmd.OutOrStdout().Write(result.Stdout)
				}
				if len(result.Stderr) > 0 {
					_, _ = cmd.ErrOrStderr().Write(result.Stderr)
				}
			}
			if result.Aborted {
				logger.Warn("agent terminated by signal",
					logging.String("run_id", runID),
					logging.Int("exit_code", result.ExitCode),
				)
			}
			if result.ExitCode != 0 {
				return &childExitError{code: result.ExitCode}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Capture agent output instead of streaming it")
	cmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Kill the agent after this duration (overrides configuration)")
	return cmd
}

// recordRun appends the invocation to the history store. History failures
// are warnings; they never fail the run they describe.
func recordRun(cfg *config.Resolved, logger *slog.Logger, runID string, started time.Time, mode dispatch.Mode, args []string, result *dispatch.Result, runErr error) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("open history store", logging.Error(err))
		return
	}
	defer store.Close()

	entry := history.Entry{
		ID:         runID,
		StartedAt:  started.UTC(),
		Duration:   time.Since(started),
		Mode:       mode.String(),
		Executable: cfg.Agent.Binary,
		Args:       args,
	}
	switch {
	case runErr != nil:
		entry.ExitCode = -1
		entry.Aborted = true
		entry.Error = runErr.Error()
	default:
		entry.ExitCode = result.ExitCode
		entry.Aborted = result.Aborted
	}

	// Recording happens after ctx may already be cancelled.
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.Record(recordCtx, entry); err != nil {
		logger.Warn("record invocation history", logging.Error(err))
	}
}
