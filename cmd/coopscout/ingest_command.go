package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
	"coopscout/internal/pipeline"
	"coopscout/internal/registry"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var feedIDs []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Read configured feeds into the registry",
		Long:  "Reads every configured feed, normalizes and deduplicates its records, and commits new candidates to the registry. Safe to re-run: records already ingested are merged, not duplicated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *registry.Store, runner *pipeline.Runner, logger *slog.Logger) error {
				feeds := cfg.SourceFeeds()
				if len(feedIDs) > 0 {
					selected := feeds[:0]
					wanted := make(map[string]bool, len(feedIDs))
					for _, id := range feedIDs {
						wanted[id] = true
					}
					for _, feed := range feeds {
						if wanted[feed.ID] {
							selected = append(selected, feed)
							delete(wanted, feed.ID)
						}
					}
					for id := range wanted {
						return fmt.Errorf("feed %q is not configured", id)
					}
					feeds = selected
				}
				if len(feeds) == 0 {
					return fmt.Errorf("no feeds configured; add [[feeds]] entries to the config file")
				}

				report, err := runner.Ingest(cmd.Context(), feeds)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Feeds", "Records", "New", "Merged", "Unchanged", "Malformed", "Excluded"},
					[][]string{{
						strconv.Itoa(report.Feeds),
						strconv.Itoa(report.Records),
						strconv.Itoa(report.New),
						strconv.Itoa(report.Merged),
						strconv.Itoa(report.Unchanged),
						strconv.Itoa(report.Malformed),
						strconv.Itoa(report.Excluded),
					}},
					0, 1, 2, 3, 4, 5, 6,
				))
				for _, conflict := range report.Conflicts {
					fmt.Fprintf(out, "conflict: %s\n", conflict)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&feedIDs, "feed", nil, "Ingest only the named feed (repeatable)")
	return cmd
}
