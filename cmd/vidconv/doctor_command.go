package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidconv/internal/deps"
	"vidconv/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, directories, and free space",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Versions", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := preflight.CheckSystemDeps(cfg)
			for _, status := range statuses {
				if !status.Available {
					fmt.Fprintln(out, renderStatusLine(status.Name, statusWarn, "skipped (not installed)", colorize))
					continue
				}
				version, err := deps.ProbeVersion(cmd.Context(), status.Path, ctx.hooks.version)
				if err != nil {
					fmt.Fprintln(out, renderStatusLine(status.Name, statusWarn, err.Error(), colorize))
					continue
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, statusInfo, version, colorize))
			}

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, status := range missing {
					names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Command))
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderStatusLine("Missing dependencies", statusError, strings.Join(names, ", "), colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("doctor found %d problem(s)", len(failed))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
