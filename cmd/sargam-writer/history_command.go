package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/history"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

// openHistory returns the history store, or nil when history is disabled or
// cannot be opened. A broken database never blocks transcription.
func (c *commandContext) openHistory() *history.Store {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("history unavailable", "path", cfg.History.Path, "error", err)
		return nil
	}
	return store
}

// record stores one run if store is non-nil.
func record(ctx context.Context, store *history.Store, tr *transcribe.Transcription, err error, source string) {
	if store == nil {
		return
	}
	if _, recErr := store.Record(ctx, tr, err, source); recErr != nil {
		slog.Warn("failed to record history", "source", source, "error", recErr)
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled (set history.enabled in %s)", ctx.configPathOrDefault())
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No transcriptions recorded yet.")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

func renderHistory(entries []history.Entry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "Source", "Length", "Symbols", "Result"})
	for _, e := range entries {
		result := e.Notation
		if e.Failed() {
			result = e.ErrorKind
		} else if len(result) > 60 {
			result = result[:57] + "..."
		}
		tw.AppendRow(table.Row{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(e.Source),
			fmt.Sprintf("%.1fs", e.Duration.Seconds()),
			strconv.Itoa(e.Symbols),
			result,
		})
	}
	return tw.Render()
}
