package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"reelsmith/internal/queue"
)

func newTopicsCommand(ctx *commandContext) *cobra.Command {
	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Inspect and manage the topic queue",
	}

	topicsCmd.AddCommand(newTopicsAddCommand(ctx))
	topicsCmd.AddCommand(newTopicsImportCommand(ctx))
	topicsCmd.AddCommand(newTopicsListCommand(ctx))
	topicsCmd.AddCommand(newTopicsRetryCommand(ctx))
	topicsCmd.AddCommand(newTopicsRemoveCommand(ctx))
	topicsCmd.AddCommand(newTopicsClearCommand(ctx))

	return topicsCmd
}

func newTopicsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <topic>...",
		Short: "Queue one or more topics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				result, err := store.Add(cmd.Context(), args...)
				if err != nil {
					return err
				}
				return printAddResult(cmd, ctx, result)
			})
		},
	}
}

func newTopicsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Queue every line of a text file as a topic",
		Long: `Queue every non-blank line of a text file as a topic.

Lines starting with '#' are ignored. Topics already in the queue (matched by
slug) are reported as duplicates and not added again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				result, err := store.ImportFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printAddResult(cmd, ctx, result)
			})
		},
	}
}

func printAddResult(cmd *cobra.Command, ctx *commandContext, result queue.AddResult) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, map[string]any{
			"added":      lo.Map(result.Added, func(t *queue.Topic, _ int) topicJSON { return newTopicJSON(t) }),
			"duplicates": lo.Ternary(result.Duplicates == nil, []string{}, result.Duplicates),
		})
	}
	out := cmd.OutOrStdout()
	for _, topic := range result.Added {
		fmt.Fprintf(out, "Queued #%d %s\n", topic.ID, topic.Topic)
	}
	for _, dup := range result.Duplicates {
		fmt.Fprintf(out, "Already queued: %s\n", dup)
	}
	fmt.Fprintf(out, "%d added, %d duplicates\n", len(result.Added), len(result.Duplicates))
	return nil
}

func newTopicsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(statusFlags))
			for _, value := range statusFlags {
				status, ok := queue.ParseStatus(strings.ToLower(strings.TrimSpace(value)))
				if !ok {
					return fmt.Errorf("unknown status %q (want pending, processing, completed, or failed)", value)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(store *queue.Store) error {
				topics, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, lo.Map(topics, func(t *queue.Topic, _ int) topicJSON { return newTopicJSON(t) }))
				}
				if len(topics) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Topic", "Status", "Attempts", "Updated", "Detail"},
					buildTopicRows(topics),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func buildTopicRows(topics []*queue.Topic) [][]string {
	return lo.Map(topics, func(t *queue.Topic, _ int) []string {
		detail := t.FinalFile
		if t.Status != queue.StatusCompleted {
			detail = truncate(t.ErrorMessage, 48)
		}
		return []string{
			strconv.FormatInt(t.ID, 10),
			truncate(t.Topic, 40),
			string(t.Status),
			strconv.Itoa(t.Attempts),
			humanize.Time(t.UpdatedAt),
			detail,
		}
	})
}

func newTopicsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return failed topics to pending",
		Long:  "Return failed topics to pending with a fresh attempt count. Without ids every failed topic is retried.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				n, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retrying %d topics\n", n)
				return nil
			})
		},
	}
}

func newTopicsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove topics from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				n, err := store.Remove(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d topics\n", n)
				return nil
			})
		},
	}
}

func newTopicsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed topics from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				n, err := store.ClearCompleted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed topics\n", n)
				return nil
			})
		},
	}
}

type topicJSON struct {
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
	FinalFile string `json:"final_file,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newTopicJSON(t *queue.Topic) topicJSON {
	return topicJSON{
		ID:        t.ID,
		Topic:     t.Topic,
		Slug:      t.Slug,
		Status:    string(t.Status),
		Attempts:  t.Attempts,
		Error:     t.ErrorMessage,
		FinalFile: t.FinalFile,
		CreatedAt: t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
