package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/queue"
	"reelsmith/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a batch of pending topics",
		Long: `Process up to batch_size pending topics, oldest first.

Each topic runs through script generation, narration, footage selection,
assembly, and music mixing. A topic that fails is requeued (or marked failed
after workflow.max_attempts) and the batch moves on to the next one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				summary, err := runBatch(cmd.Context(), cfg, store, logger, batchSize)
				if err != nil {
					return err
				}
				return printBatchSummary(cmd, ctx, summary)
			})
		},
	}

	cmd.Flags().IntVarP(&batchSize, "batch-size", "n", 0, "Maximum topics to process (defaults to workflow.batch_size)")
	return cmd
}

func runBatch(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger, size int) (workflow.BatchSummary, error) {
	deps, err := workflow.NewDependencies(cfg)
	if err != nil {
		return workflow.BatchSummary{}, err
	}
	pipeline := workflow.NewPipeline(cfg, deps, logger)
	runner := workflow.NewRunner(cfg, store, pipeline, logger)
	return runner.RunBatch(ctx, size)
}

func printBatchSummary(cmd *cobra.Command, ctx *commandContext, summary workflow.BatchSummary) error {
	if ctx.JSONMode() {
		outcomes := make([]map[string]any, 0, len(summary.Outcomes))
		for _, o := range summary.Outcomes {
			outcomes = append(outcomes, map[string]any{
				"id":               o.TopicID,
				"topic":            o.Topic,
				"status":           string(o.Status),
				"final_file":       o.FinalFile,
				"error":            o.Error,
				"duration_seconds": o.Duration.Seconds(),
			})
		}
		return writeJSON(cmd, map[string]any{
			"processed":        summary.Processed,
			"failed":           summary.Failed,
			"remaining":        summary.Remaining,
			"duration_seconds": summary.Duration.Seconds(),
			"topics":           outcomes,
		})
	}

	out := cmd.OutOrStdout()
	if len(summary.Outcomes) == 0 {
		fmt.Fprintln(out, "No pending topics")
		return nil
	}
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		detail := o.FinalFile
		if detail == "" {
			detail = truncate(o.Error, 60)
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.TopicID, 10),
			truncate(o.Topic, 40),
			string(o.Status),
			formatDuration(o.Duration),
			detail,
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"ID", "Topic", "Result", "Took", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d succeeded, %d failed, %d pending (%s)\n",
		summary.Processed, summary.Failed, summary.Remaining, formatDuration(summary.Duration))
	return nil
}
