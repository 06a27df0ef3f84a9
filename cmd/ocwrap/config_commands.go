package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ocwrap/internal/config"
)

func newConfigCommand(cctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(cctx))
	configCmd.AddCommand(newConfigPathCommand(cctx))
	configCmd.AddCommand(newConfigValidateCommand(cctx))
	configCmd.AddCommand(newConfigInitCommand(cctx))

	return configCmd
}

func newConfigShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the resolved configuration and where each value came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Fields()))
			for _, field := range cfg.Fields() {
				rows = append(rows, []string{field.Name, field.Value, field.Source.String()})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			printConfigFiles(cmd, cfg)
			return nil
		},
	}
}

func newConfigPathCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cctx.userConfigPath()
			if err != nil {
				return fmt.Errorf("determine config path: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigValidateCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the layered configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			printConfigFiles(cmd, cfg)
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}

func newConfigInitCommand(cctx *commandContext) *cobra.Command {
	var targetPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			var err error
			if target == "" {
				// Honors the persistent --config flag the same way the
				// loader does.
				target, err = cctx.userConfigPath()
			} else {
				target, err = config.ExpandPath(target)
			}
			if err == nil {
				err = config.InitConfigAt(target, force)
			}
			if err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file or export OPENCODE_API_KEY before running the agent.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func printConfigFiles(cmd *cobra.Command, cfg *config.Resolved) {
	out := cmd.OutOrStdout()
	if path, exists := cfg.UserFile(); path != "" {
		fmt.Fprintf(out, "User config:    %s%s\n", path, missingSuffix(exists))
	}
	if path, exists := cfg.ProjectFile(); path != "" {
		fmt.Fprintf(out, "Project config: %s%s\n", path, missingSuffix(exists))
	}
}

func missingSuffix(exists bool) string {
	if exists {
		return ""
	}
	return " (not found)"
}
