package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reckon/internal/archive"
	"reckon/internal/classify"
	"reckon/internal/config"
	"reckon/internal/dupgate"
	"reckon/internal/identity"
	"reckon/internal/logging"
	"reckon/internal/recording"
	"reckon/internal/retry"
	"reckon/internal/services"
)

// Archiver is the write side of the archive the pipeline records into.
type Archiver interface {
	Insert(ctx context.Context, record *archive.Record) (*archive.Record, error)
}

// Options tune one pipeline instance.
type Options struct {
	// Workers bounds concurrent observation processing. Zero means one.
	Workers int
	// DryRun evaluates and classifies without writing archive records.
	DryRun bool
}

// Pipeline runs observations through canonicalize, fingerprint, gate,
// classify, and archive write. Observations of distinct recordings proceed
// in parallel; two observations of the same recording serialize on a
// per-identity lock spanning evaluate-then-record.
type Pipeline struct {
	gate       *dupgate.Gate
	classifier *classify.Classifier
	archiver   Archiver
	locks      *dupgate.KeyLock
	opts       Options
	logger     *slog.Logger
}

// New constructs a Pipeline over the given collaborators.
func New(gate *dupgate.Gate, classifier *classify.Classifier, archiver Archiver, opts Options, logger *slog.Logger) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Pipeline{
		gate:       gate,
		classifier: classifier,
		archiver:   archiver,
		locks:      dupgate.NewKeyLock(),
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// FromConfig wires a Pipeline from configuration and an open archive store.
func FromConfig(cfg *config.Config, store *archive.Store, approver dupgate.Approver, opts Options, logger *slog.Logger) *Pipeline {
	gate := dupgate.New(store, approver, retry.PolicyFromConfig(cfg), logger)
	classifier := classify.New(classify.PolicyFromConfig(cfg), logger)
	if opts.Workers <= 0 && cfg != nil {
		opts.Workers = cfg.Pipeline.Workers
	}
	return New(gate, classifier, store, opts, logger)
}

// Run processes every observation and returns the run summary. Per-recording
// failures are captured in the summary; only context cancellation aborts the
// run as a whole.
func (p *Pipeline) Run(ctx context.Context, observations []recording.Metadata) (*Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("run started",
		logging.Int("observations", len(observations)),
		logging.Bool("dry_run", p.opts.DryRun),
	)

	outcomes := make([]Outcome, len(observations))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.opts.Workers)
	for i, observation := range observations {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.processOne(groupCtx, observation)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	summary := summarize(runID, p.opts.DryRun, outcomes)
	logger.Info("run finished",
		logging.Int("attempted", summary.Attempted),
		logging.Int("proceeded_new", summary.ProceededNew),
		logging.Int("overridden", summary.Overridden),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (p *Pipeline) processOne(ctx context.Context, observation recording.Metadata) Outcome {
	outcome := Outcome{Identifier: observation.Identifier, Topic: observation.Topic}

	id, err := canonicalize(observation)
	if err != nil {
		return fail(outcome, services.Wrap(services.ErrValidation, "pipeline", "canonicalize identifier", observation.Identifier, err))
	}
	fingerprint := observation.Fingerprint()

	// The lock key is the canonical identity, or the fingerprint when the
	// identity is unresolved. It spans evaluate-then-record so concurrent
	// observations of one recording cannot race past the gate.
	key := id.Key()
	if key == "" {
		key = fingerprint
	}
	if key != "" {
		release := p.locks.Acquire(key)
		defer release()
	}

	ctx = services.WithRecording(ctx, key)
	logger := logging.WithContext(ctx, p.logger)

	decision, err := p.gate.Evaluate(services.WithStage(ctx, "gate"), id, fingerprint)
	if err != nil {
		return fail(outcome, err)
	}
	outcome.Decision = decision.Decision
	outcome.MatchMethod = decision.Method
	if !decision.Proceed() {
		logger.Info("observation skipped as duplicate",
			logging.String(logging.FieldMatchMethod, string(decision.Method)))
		return outcome
	}

	result := p.classifier.Classify(observation)
	outcome.Category = result.Category
	outcome.Rule = result.Rule
	outcome.NoShow = result.NoShow
	outcome.Incomplete = result.Incomplete

	if p.opts.DryRun {
		logger.Info("dry run, archive write suppressed",
			logging.String(logging.FieldCategory, string(result.Category)))
		return outcome
	}

	record := &archive.Record{
		Identity:          id,
		Fingerprint:       fingerprint,
		MeetingID:         observation.ExternalMeetingID,
		Topic:             observation.Topic,
		StartTime:         observation.StartTime,
		DurationSeconds:   int64(observation.DurationSeconds),
		AggregateFileSize: observation.AggregateFileSize,
		Category:          result.Category,
		Rule:              result.Rule,
		NoShow:            result.NoShow,
		Incomplete:        result.Incomplete,
		Decision:          decision.Decision,
		MatchMethod:       decision.Method,
		FileTypes:         observation.FileTypes(),
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		record.RunID = runID
	}

	inserted, err := p.archiver.Insert(ctx, record)
	if err != nil {
		return fail(outcome, services.Wrap(services.ErrTransient, "pipeline", "archive write", "record not persisted", err))
	}
	outcome.RecordID = inserted.ID

	logger.Info("observation archived",
		logging.String(logging.FieldCategory, string(result.Category)),
		logging.String(logging.FieldDecision, string(decision.Decision)),
		logging.Int64("record_id", inserted.ID),
	)
	return outcome
}

func fail(outcome Outcome, err error) Outcome {
	outcome.Err = err.Error()
	outcome.ErrKind = services.Kind(err)
	return outcome
}

// canonicalize derives the identity for an observation. A missing identifier
// is legal (fingerprint-only dedup); a malformed one fails the observation.
func canonicalize(observation recording.Metadata) (identity.CanonicalIdentity, error) {
	if observation.Identifier == "" {
		return identity.CanonicalIdentity{}, nil
	}
	return identity.Canonicalize(observation.Identifier, observation.IdentifierEncoding)
}

