package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
	"coopscout/internal/pipeline"
	"coopscout/internal/registry"
	"coopscout/internal/similarity"
)

func newRankCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Score unresolved candidates against the verified set",
		Long:  "Fetches website content for unresolved candidates, embeds it, and scores each against the mean embedding of verified cooperatives. Scores are persisted; the top of the queue is printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *registry.Store, runner *pipeline.Runner, logger *slog.Logger) error {
				report, err := runner.RankPending(cmd.Context(), newProgress())
				if errors.Is(err, similarity.ErrNoVerified) {
					return fmt.Errorf("nothing verified yet; verify a seed candidate first (coopscout review)")
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if report.Pending == 0 {
					fmt.Fprintln(out, "No unresolved candidates.")
					return nil
				}

				fmt.Fprintf(out, "Scored %d of %d candidates (%d fetched, %d unreachable)\n",
					report.Scored, report.Pending, report.Fetched, report.FetchFailed)
				if report.Deprioritized > 0 {
					fmt.Fprintf(out, "%d candidates scored below the similarity threshold (kept in queue)\n",
						report.Deprioritized)
				}

				queue := report.Queue
				if limit > 0 && len(queue) > limit {
					queue = queue[:limit]
				}
				rows := make([][]string, 0, len(queue))
				for _, item := range queue {
					score := formatScore(item)
					if item.Deprioritized {
						score += " (low)"
					}
					rows = append(rows, []string{
						score,
						item.Entity.Name,
						string(item.Entity.Category),
						item.Entity.Website,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Score", "Name", "Category", "Website"},
					rows,
					0,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many queue entries to print (0 for all)")
	return cmd
}
