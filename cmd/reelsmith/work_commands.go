package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"reelsmith/internal/queue"
	"reelsmith/internal/staging"
)

func newWorkCommand(ctx *commandContext) *cobra.Command {
	workCmd := &cobra.Command{
		Use:   "work",
		Short: "Manage per-topic work directories",
	}

	workCmd.AddCommand(newWorkListCommand(ctx))
	workCmd.AddCommand(newWorkCleanCommand(ctx))

	return workCmd
}

func newWorkListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List work directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := staging.ListDirectories(cfg.Paths.WorkDir)
			if err != nil {
				return fmt.Errorf("list work directories: %w", err)
			}
			totalSize := lo.SumBy(dirs, func(d staging.DirInfo) int64 { return d.Size })

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"work_dir":         cfg.Paths.WorkDir,
					"directories":      lo.Ternary(dirs == nil, []staging.DirInfo{}, dirs),
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No work directories found")
				return nil
			}
			fmt.Fprintf(out, "Work directory: %s\n\n", cfg.Paths.WorkDir)
			rows := lo.Map(dirs, func(d staging.DirInfo, _ int) []string {
				return []string{d.Name, formatDuration(time.Since(d.ModTime)), humanize.Bytes(uint64(d.Size))}
			})
			fmt.Fprint(out, renderTable(
				[]string{"Topic", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Total: %d directories, %s\n", len(dirs), humanize.Bytes(uint64(totalSize)))
			return nil
		},
	}
}

func newWorkCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan string
	var orphaned bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove work directories of finished topics",
		Long: `Remove work directories that no unfinished topic needs.

Directories of pending, processing, and failed topics are always kept so a
retried topic can resume. By default directories older than
workflow.stale_work_days are removed; --older-than overrides the age and
--orphaned removes every other directory regardless of age.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			maxAge := time.Duration(cfg.Workflow.StaleWorkDays) * 24 * time.Hour
			if olderThan != "" {
				if maxAge, err = parseAge(olderThan); err != nil {
					return err
				}
			}

			return ctx.withStore(func(store *queue.Store) error {
				open, err := store.List(cmd.Context(), queue.StatusPending, queue.StatusProcessing, queue.StatusFailed)
				if err != nil {
					return err
				}
				active := lo.SliceToMap(open, func(t *queue.Topic) (string, struct{}) { return t.Slug, struct{}{} })

				var result staging.CleanStaleResult
				label := "stale"
				if orphaned {
					label = "orphaned"
					result = staging.CleanOrphaned(cmd.Context(), cfg.Paths.WorkDir, active, nil)
				} else {
					result = staging.CleanStale(cmd.Context(), cfg.Paths.WorkDir, maxAge, active, nil)
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"removed": len(result.Removed),
						"errors": lo.Map(result.Errors, func(e staging.CleanupError, _ int) string {
							return fmt.Sprintf("%s: %v", e.Path, e.Error)
						}),
					})
				}
				return printCleanResult(cmd, result, label)
			})
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "", "Minimum age to remove, e.g. 7d or 36h")
	cmd.Flags().BoolVar(&orphaned, "orphaned", false, "Remove every directory not used by an unfinished topic")
	return cmd
}

func printCleanResult(cmd *cobra.Command, result staging.CleanStaleResult, label string) error {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintf(out, "No %s directories to clean\n", label)
		return nil
	}
	fmt.Fprintf(out, "Removed %d %s directories", len(result.Removed), label)
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, ", %d errors", len(result.Errors))
	}
	fmt.Fprintln(out)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
	}
	return nil
}
