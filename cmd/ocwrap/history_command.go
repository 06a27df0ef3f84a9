package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ocwrap/internal/history"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent agent invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History recording is disabled (history.enabled = false)")
				return nil
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No invocations recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
					entry.Mode,
					strings.Join(entry.Args, " "),
					formatOutcome(entry),
					entry.Duration.Round(time.Millisecond).String(),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Mode", "Args", "Outcome", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of invocations to show")
	return cmd
}

func formatOutcome(entry history.Entry) string {
	switch {
	case entry.Error != "":
		return "error: " + entry.Error
	case entry.Aborted:
		return "aborted (exit " + strconv.Itoa(entry.ExitCode) + ")"
	case entry.ExitCode == 0:
		return "ok"
	default:
		return "exit " + strconv.Itoa(entry.ExitCode)
	}
}
