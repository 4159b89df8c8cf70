package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"coopscout/internal/logging"
	"coopscout/internal/registry"
	"coopscout/internal/similarity"
	"coopscout/internal/webfetch"
)

// RankReport carries the ranked queue plus stage counters.
type RankReport struct {
	Pending       int
	Fetched       int
	FetchFailed   int
	Scored        int
	Unscored      int
	Deprioritized int
	Queue         []similarity.Ranked
}

// Progress reports stage completion for long-running phases.
type Progress func(stage string, done, total int)

// RankPending fetches website content for unresolved candidates, scores them
// against the verified set, and returns the review queue in ranked order.
// Scores and snippets are committed to the registry; fetch failures mark the
// entity instead of aborting the run.
func (r *Runner) RankPending(ctx context.Context, progress Progress) (RankReport, error) {
	logger := logging.NewComponentLogger(r.logger, "rank")
	reg := r.store.Registry()
	pending := reg.Pending()
	verified := reg.Verified()

	report := RankReport{Pending: len(pending)}
	if len(pending) == 0 {
		return report, nil
	}
	if len(verified) == 0 {
		return report, similarity.ErrNoVerified
	}

	if err := r.fetchContent(ctx, pending, &report, progress, logger); err != nil {
		return report, err
	}
	// Re-read so ranking sees the snippets committed by the fetch phase.
	pending = reg.Pending()

	ranker := similarity.NewRanker(r.embedder, logger,
		similarity.WithThreshold(r.cfg.Ranking.Threshold),
		similarity.WithWorkers(r.cfg.Ranking.Workers),
	)
	var embedProgress func(done, total int)
	if progress != nil {
		embedProgress = func(done, total int) { progress("embed", done, total) }
	}
	queue, err := ranker.Rank(ctx, pending, verified, embedProgress)
	if err != nil {
		return report, fmt.Errorf("rank candidates: %w", err)
	}

	for _, item := range queue {
		if !item.Scored {
			report.Unscored++
			continue
		}
		report.Scored++
		if item.Deprioritized {
			report.Deprioritized++
		}
		if err := reg.SetScore(item.Entity.ID, item.Score, ""); err != nil {
			return report, fmt.Errorf("record score for %s: %w", item.Entity.ID, err)
		}
	}
	if err := r.store.Save(); err != nil {
		return report, fmt.Errorf("commit registry: %w", err)
	}

	report.Queue = queue
	logger.Info("ranking complete",
		slog.Int("pending", report.Pending),
		slog.Int("scored", report.Scored),
		slog.Int("unscored", report.Unscored),
		slog.Int("deprioritized", report.Deprioritized),
		slog.Float64("threshold", r.cfg.Ranking.Threshold),
	)
	return report, nil
}

// fetchContent retrieves website text for candidates that still need it and
// commits the snippets. Candidates without a website, with content already on
// file, or already flagged unreachable are left alone.
func (r *Runner) fetchContent(ctx context.Context, pending []registry.Entity, report *RankReport, progress Progress, logger *slog.Logger) error {
	var targets []registry.Entity
	for _, entity := range pending {
		if entity.Website == "" || entity.Snippet != "" || entity.ContentUnavailable {
			continue
		}
		targets = append(targets, entity)
	}
	if len(targets) == 0 {
		return nil
	}

	urls := make([]string, len(targets))
	for i, entity := range targets {
		urls[i] = entity.Website
	}
	if progress != nil {
		progress("fetch", 0, len(urls))
	}
	outcomes := webfetch.FetchAll(ctx, r.fetcher, urls, r.cfg.Fetch.Concurrency)

	reg := r.store.Registry()
	for i, outcome := range outcomes {
		if progress != nil {
			progress("fetch", i+1, len(outcomes))
		}
		entity := targets[i]
		if outcome.Err != nil {
			report.FetchFailed++
			if err := reg.SetContentUnavailable(entity.ID); err != nil {
				return fmt.Errorf("flag %s: %w", entity.ID, err)
			}
			logger.Warn("website fetch failed",
				slog.String("entity", entity.ID),
				slog.String("url", entity.Website),
				logging.Error(outcome.Err),
			)
			continue
		}
		report.Fetched++
		updated := entity.Clone()
		updated.Snippet = webfetch.Truncate(outcome.Result.Content, r.cfg.Fetch.MaxContentChars)
		if _, err := reg.UpsertCandidate(updated); err != nil {
			return fmt.Errorf("store content for %s: %w", entity.ID, err)
		}
	}

	if err := r.store.Save(); err != nil {
		return fmt.Errorf("commit fetched content: %w", err)
	}
	return nil
}
