package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"reelsmith/internal/logging"
	"reelsmith/internal/logs"
	"reelsmith/internal/queue"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var topicID int64

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the batch log or a single topic's log",
		Long: `Print the last lines of log_dir/reelsmith.log.

With --topic, print the per-topic log written while that topic was processed.
--follow keeps printing new lines until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			if cmd.Flags().Changed("topic") {
				err := ctx.withStore(func(store *queue.Store) error {
					topic, err := store.GetByID(cmd.Context(), topicID)
					if err != nil {
						return err
					}
					if topic == nil {
						return fmt.Errorf("topic %d not found", topicID)
					}
					path = cfg.TopicLogPath(topic.Slug)
					return nil
				})
				if err != nil {
					return err
				}
			}

			result, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(result.Lines) == 0 && !follow {
				fmt.Fprintf(out, "No log entries in %s\n", path)
				return nil
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().Int64VarP(&topicID, "topic", "t", 0, "Show the log of this topic id")
	return cmd
}
