package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coopscout/internal/dedupe"
	"coopscout/internal/logging"
	"coopscout/internal/normalize"
	"coopscout/internal/sources"
)

// IngestReport tallies one ingestion run. Every record lands in exactly one
// of Malformed, Excluded, New, Merged, or Unchanged.
type IngestReport struct {
	Feeds     int
	Records   int
	Malformed int
	Excluded  int
	New       int
	Merged    int
	Unchanged int
	Conflicts []dedupe.Conflict
}

// Ingest reads every feed, normalizes its records, and resolves them against
// the registry. The snapshot is committed once at the end; a failed feed read
// aborts before anything is persisted.
func (r *Runner) Ingest(ctx context.Context, feeds []sources.Feed) (IngestReport, error) {
	logger := logging.NewComponentLogger(r.logger, "ingest")
	var report IngestReport
	normalizer := normalize.New()
	dedup := dedupe.New(r.store.Registry(), logger)

	for _, feed := range feeds {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		records, err := sources.ReadFeed(feed)
		if err != nil {
			return report, fmt.Errorf("read feed %s: %w", feed.ID, err)
		}
		report.Feeds++
		report.Records += len(records)
		logger.Info("feed read",
			slog.String("feed", feed.ID),
			slog.String("kind", string(feed.Kind)),
			slog.Int("records", len(records)),
		)

		for _, record := range records {
			entity, err := normalizer.Normalize(record)
			switch {
			case errors.Is(err, normalize.ErrMalformedRecord):
				report.Malformed++
				logger.Warn("record skipped", slog.String("feed", feed.ID), slog.String("reason", "malformed"))
				continue
			case errors.Is(err, normalize.ErrExcludedRecord):
				report.Excluded++
				continue
			case err != nil:
				return report, fmt.Errorf("normalize record from %s: %w", feed.ID, err)
			}

			result, err := dedup.Resolve(entity)
			if err != nil {
				return report, fmt.Errorf("resolve %q from %s: %w", entity.Name, feed.ID, err)
			}
			report.Conflicts = append(report.Conflicts, result.Conflicts...)
			switch result.Outcome {
			case dedupe.OutcomeNew:
				report.New++
			case dedupe.OutcomeMergedPending, dedupe.OutcomeMergedTerminal:
				report.Merged++
			case dedupe.OutcomeUnchanged:
				report.Unchanged++
			}
		}
	}

	if err := r.store.Save(); err != nil {
		return report, fmt.Errorf("commit registry: %w", err)
	}

	logger.Info("ingest complete",
		slog.Int("feeds", report.Feeds),
		slog.Int("records", report.Records),
		slog.Int("new", report.New),
		slog.Int("merged", report.Merged),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("malformed", report.Malformed),
		slog.Int("excluded", report.Excluded),
		slog.Int("conflicts", len(report.Conflicts)),
	)
	return report, nil
}
