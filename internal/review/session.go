package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"coopscout/internal/logging"
	"coopscout/internal/registry"
	"coopscout/internal/similarity"
)

// Options tunes a review session.
type Options struct {
	// MaxItems caps how many candidates the session presents. Zero means no
	// cap.
	MaxItems int
	// MinScore hides scored candidates below this similarity. Unscored
	// candidates are always shown.
	MinScore float64
	// OpenURL is invoked for the 'o' decision; nil disables it.
	OpenURL func(url string) error
}

// Summary reports what a session accomplished.
type Summary struct {
	Presented int
	Verified  int
	Rejected  int
	Skipped   int
	// Precision is this session's verified/(verified+rejected); NaN is never
	// produced, sessions with no decisions report zero.
	Precision float64
}

// Session walks a reviewer through the ranked candidate queue, committing
// each verdict as it lands.
type Session struct {
	store  *registry.Store
	source DecisionSource
	out    io.Writer
	logger *slog.Logger
	opts   Options
}

// NewSession wires a session over the store, decision source, and output.
func NewSession(store *registry.Store, source DecisionSource, out io.Writer, logger *slog.Logger, opts Options) *Session {
	logger = logging.NewComponentLogger(logger, "review")
	return &Session{store: store, source: source, out: out, logger: logger, opts: opts}
}

// Run presents candidates in queue order until the reviewer quits, the queue
// drains, or the context is canceled. Cancellation is treated like quit: the
// session record still lands, decisions already made stay committed.
func (s *Session) Run(ctx context.Context, queue []similarity.Ranked) (Summary, error) {
	started := time.Now().UTC()
	var summary Summary

	runErr := s.walk(ctx, queue, &summary)

	if summary.Verified+summary.Rejected > 0 {
		summary.Precision = registry.Precision(summary.Verified, summary.Rejected)
		stats := s.store.Registry().Stats()
		rec := registry.SessionRecord{
			StartedAt:          started,
			Verified:           summary.Verified,
			Rejected:           summary.Rejected,
			Precision:          summary.Precision,
			CumulativeVerified: stats.VerifiedCount,
			CumulativeReviewed: stats.VerifiedCount + stats.RejectedCount,
		}
		if err := s.store.RecordSession(rec); err != nil {
			return summary, fmt.Errorf("record session: %w", err)
		}
	}
	return summary, runErr
}

func (s *Session) walk(ctx context.Context, queue []similarity.Ranked, summary *Summary) error {
	for _, item := range queue {
		if s.opts.MaxItems > 0 && summary.Presented >= s.opts.MaxItems {
			return nil
		}
		if item.Scored && item.Score < s.opts.MinScore {
			continue
		}

		summary.Presented++
		RenderCandidate(s.out, summary.Presented, item)

	decide:
		for {
			select {
			case <-ctx.Done():
				fmt.Fprintln(s.out, "\ninterrupted; progress saved")
				return nil
			default:
			}

			fmt.Fprint(s.out, "[v]erify / [r]eject / [s]kip / [o]pen / [q]uit > ")
			decision, err := s.source.Next()
			if errors.Is(err, io.EOF) {
				decision = DecisionQuit
			} else if err != nil {
				return fmt.Errorf("read decision: %w", err)
			}

			switch decision {
			case DecisionVerify:
				if err := s.store.PromoteToVerified(item.Entity.ID, item.Entity.Provenance); err != nil {
					return fmt.Errorf("verify %s: %w", item.Entity.ID, err)
				}
				summary.Verified++
				s.logger.Info("candidate verified",
					slog.String("entity", item.Entity.ID),
					slog.String("name", item.Entity.Name),
				)
				break decide
			case DecisionReject:
				if err := s.store.MarkRejected(item.Entity.ID, ""); err != nil {
					return fmt.Errorf("reject %s: %w", item.Entity.ID, err)
				}
				summary.Rejected++
				s.logger.Info("candidate rejected",
					slog.String("entity", item.Entity.ID),
					slog.String("name", item.Entity.Name),
				)
				break decide
			case DecisionSkip:
				summary.Skipped++
				break decide
			case DecisionOpen:
				s.open(item.Entity.Website)
				// Same candidate, next decision.
			case DecisionQuit:
				return nil
			}
		}
	}
	return nil
}

func (s *Session) open(url string) {
	switch {
	case url == "":
		fmt.Fprintln(s.out, "no website on record")
	case s.opts.OpenURL == nil:
		fmt.Fprintln(s.out, "browser opening not configured")
	default:
		if err := s.opts.OpenURL("https://" + url); err != nil {
			fmt.Fprintf(s.out, "open failed: %v\n", err)
		}
	}
}
