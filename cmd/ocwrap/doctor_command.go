package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ocwrap/internal/deps"
)

func newDoctorCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			requirements := []deps.Requirement{
				{
					Name:        "opencode agent",
					Command:     cfg.Agent.Binary,
					Description: "Coding agent launched by the run command",
				},
			}

			statuses := deps.CheckBinaries(requirements)
			rows := make([][]string, 0, len(statuses)+1)
			failed := false
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						failed = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Detail})
			}

			if cfg.History.Enabled {
				state, detail := "ok", ""
				if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
					state, detail = "unusable", err.Error()
				}
				rows = append(rows, []string{"history store", cfg.History.Path, state, detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Command", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if failed {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
}
