package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
	"coopscout/internal/registry"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry counts and review precision",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *registry.Store, logger *slog.Logger) error {
				verified, rejected, pending, total := store.Registry().Counts()
				stats := store.Registry().Stats()

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Verified", "Rejected", "Pending", "Total", "Precision"},
					[][]string{{
						strconv.Itoa(verified),
						strconv.Itoa(rejected),
						strconv.Itoa(pending),
						strconv.Itoa(total),
						formatPercent(stats.Precision()),
					}},
					0, 1, 2, 3, 4,
				))

				if len(stats.SessionHistory) == 0 {
					return nil
				}
				fmt.Fprintln(out, "\nSession history:")
				rows := make([][]string, 0, len(stats.SessionHistory))
				for _, rec := range stats.SessionHistory {
					rows = append(rows, []string{
						rec.StartedAt.Local().Format(time.DateTime),
						strconv.Itoa(rec.Verified),
						strconv.Itoa(rec.Rejected),
						formatPercent(rec.Precision),
						strconv.Itoa(rec.CumulativeVerified),
						strconv.Itoa(rec.CumulativeReviewed),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Verified", "Rejected", "Precision", "Cum. Verified", "Cum. Reviewed"},
					rows,
					1, 2, 3, 4, 5,
				))
				return nil
			})
		},
	}
}
