package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/deps"
	"reelsmith/internal/preflight"
	"reelsmith/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkRemote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment readiness and queue counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			depStatuses := preflight.CheckSystemDeps(cfg)
			checks := preflight.RunAll(cmd.Context(), cfg)
			if checkRemote {
				checks = append(checks, preflight.CheckPexels(cmd.Context(), cfg.Pexels.BaseURL, cfg.Pexels.APIKey))
			}

			var stats queue.Stats
			if err := ctx.withStore(func(store *queue.Store) error {
				stats, err = store.Stats(cmd.Context())
				return err
			}); err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"config_path":  ctx.configPath,
					"dependencies": depStatuses,
					"checks":       checks,
					"queue": map[string]int{
						"pending":    stats.Pending,
						"processing": stats.Processing,
						"completed":  stats.Completed,
						"failed":     stats.Failed,
					},
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config: %s\n\n", ctx.configPath)

			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			fmt.Fprint(out, renderTable(
				[]string{"Binary", "Command", "Status", "Detail"},
				buildDependencyRows(depStatuses, colorize),
				nil,
			))

			fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
			fmt.Fprint(out, renderTable(
				[]string{"Check", "Status", "Detail"},
				buildCheckRows(checks, colorize),
				nil,
			))

			fmt.Fprintln(out, renderSectionHeader("Queue", colorize))
			fmt.Fprint(out, renderTable(
				[]string{"Status", "Count"},
				[][]string{
					{string(queue.StatusPending), strconv.Itoa(stats.Pending)},
					{string(queue.StatusProcessing), strconv.Itoa(stats.Processing)},
					{string(queue.StatusCompleted), strconv.Itoa(stats.Completed)},
					{string(queue.StatusFailed), strconv.Itoa(stats.Failed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))

			if missing := deps.Missing(depStatuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				fmt.Fprintf(out, "\nMissing required binaries: %s\n", strings.Join(names, ", "))
			}
			if failed := preflight.Failed(checks); len(failed) > 0 {
				fmt.Fprintf(out, "\n%d checks failed; batches will not start until they pass\n", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkRemote, "check-pexels", false, "Also verify the Pexels API key with a live search")
	return cmd
}

func buildDependencyRows(statuses []deps.Status, colorize bool) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		kind := statusOK
		if !s.Available {
			kind = statusError
			if s.Optional {
				kind = statusWarn
			}
		}
		detail := s.Detail
		if detail == "" {
			detail = s.Description
		}
		rows = append(rows, []string{s.Name, s.Command, statusCell(kind, colorize), detail})
	}
	return rows
}

func buildCheckRows(results []preflight.Result, colorize bool) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		rows = append(rows, []string{r.Name, statusCell(kind, colorize), r.Detail})
	}
	return rows
}
