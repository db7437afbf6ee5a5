package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reckon/internal/archive"
	"reckon/internal/config"
	"reckon/internal/logging"
	"reckon/internal/recording"
)

// Engine performs the read-only audit of source recordings against the
// archive and storage snapshots. Safe to re-run at any time; inputs are
// never mutated.
type Engine struct {
	similarityThreshold float64
	workers             int
	logger              *slog.Logger
}

// NewEngine constructs an Engine from configuration. A nil config uses
// defaults.
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	threshold := cfg.Reconcile.TopicSimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = config.Default().Reconcile.TopicSimilarityThreshold
	}
	workers := cfg.Reconcile.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		similarityThreshold: threshold,
		workers:             workers,
		logger:              logging.NewComponentLogger(logger, "reconcile"),
	}
}

// Reconcile audits every source recording and returns the discrepancy
// report. Sources are independent, so matching fans out across the
// configured worker count; entries keep source order regardless.
func (e *Engine) Reconcile(ctx context.Context, sources []recording.Metadata, records []*archive.Record, manifests []StorageManifest) (*Report, error) {
	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]Entry, len(sources)),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for i, source := range sources {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			entry := e.matchOne(source, records, manifests)
			entry.Timestamp = time.Now().UTC()
			report.Entries[i] = entry
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	counts := report.Counts()
	e.logger.Info("reconciliation complete",
		logging.String(logging.FieldRunID, report.RunID),
		logging.Int("sources", len(sources)),
		logging.Int("matched", counts[StatusMatched]),
		logging.Int("missing_in_archive", counts[StatusMissingInArchive]),
		logging.Int("partial_files", counts[StatusPartialFiles]),
		logging.Int("ambiguous", counts[StatusAmbiguousMatch]),
	)
	return report, nil
}
