package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
	"coopscout/internal/pipeline"
	"coopscout/internal/registry"
	"coopscout/internal/review"
	"coopscout/internal/similarity"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var maxItems int
	var minScore float64
	var decisions string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review ranked candidates interactively",
		Long:  "Ranks the unresolved candidates and walks through them one at a time. Each verdict is committed immediately, so a quit or interrupt loses nothing already decided. --decisions replays a fixed verdict sequence instead of prompting.",
		RunE: func(cmd *cobra.Command, args []string) error {
			scripted, err := scriptedDecisions(decisions)
			if err != nil {
				return err
			}
			if scripted == nil && !stdoutIsTerminal() {
				return fmt.Errorf("review needs an interactive terminal (or --decisions)")
			}

			return ctx.withRunner(func(cfg *config.Config, store *registry.Store, runner *pipeline.Runner, logger *slog.Logger) error {
				verified, _, pending, _ := store.Registry().Counts()
				if pending == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No unresolved candidates.")
					return nil
				}

				var queue []similarity.Ranked
				if verified == 0 {
					// Nothing to rank against yet; present candidates in
					// registry order so the first seeds can be verified.
					fmt.Fprintln(cmd.OutOrStdout(), "No verified cooperatives yet; presenting candidates unranked.")
					for _, entity := range store.Registry().Pending() {
						queue = append(queue, similarity.Ranked{Entity: entity})
					}
				} else {
					report, err := runner.RankPending(cmd.Context(), newProgress())
					if err != nil {
						return err
					}
					queue = report.Queue
				}

				opts := review.Options{
					MaxItems: cfg.Review.MaxItems,
					MinScore: cfg.Review.MinScore,
					OpenURL:  browserOpener(cfg.Review.BrowserCommand),
				}
				if cmd.Flags().Changed("max-items") {
					opts.MaxItems = maxItems
				}
				if cmd.Flags().Changed("min-score") {
					opts.MinScore = minScore
				}

				out := cmd.OutOrStdout()
				var source review.DecisionSource = review.NewReaderSource(cmd.InOrStdin(), out)
				if scripted != nil {
					source = scripted
				}
				session := review.NewSession(store, source, out, logger, opts)
				summary, err := session.Run(cmd.Context(), queue)
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}

				fmt.Fprintf(out, "\nSession: %d presented, %d verified, %d rejected, %d skipped",
					summary.Presented, summary.Verified, summary.Rejected, summary.Skipped)
				if summary.Verified+summary.Rejected > 0 {
					fmt.Fprintf(out, " (precision %s)", formatPercent(summary.Precision))
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxItems, "max-items", 0, "Stop after presenting this many candidates (0 for all)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Hide scored candidates below this similarity")
	cmd.Flags().StringVar(&decisions, "decisions", "", "Apply this verdict sequence (e.g. vrsq) instead of prompting")
	return cmd
}

// scriptedDecisions parses a --decisions value into a replayable source.
func scriptedDecisions(value string) (*review.ScriptedSource, error) {
	if value == "" {
		return nil, nil
	}
	parsed := make([]review.Decision, 0, len(value))
	for _, r := range value {
		decision, err := review.ParseDecision(string(r))
		if err != nil {
			return nil, fmt.Errorf("--decisions: %w", err)
		}
		parsed = append(parsed, decision)
	}
	return review.NewScriptedSource(parsed...), nil
}

func browserOpener(command string) func(string) error {
	if command == "" {
		return nil
	}
	return func(url string) error {
		c := exec.Command(command, url)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Start()
	}
}
