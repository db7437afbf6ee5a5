package dupgate

import (
	"context"
	"log/slog"

	"reckon/internal/identity"
	"reckon/internal/logging"
	"reckon/internal/retry"
	"reckon/internal/services"
)

// RecordLookup is the injected archive collaborator. FindByIdentity must
// accept any of the three identifier encodings transparently, and the backing
// store must offer read-after-write consistency for gate idempotence to hold.
type RecordLookup interface {
	FindByIdentity(ctx context.Context, form string) (*Prior, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*Prior, error)
}

// Gate answers "have I already processed this exact recording instance?"
// before any expensive downstream work runs.
type Gate struct {
	lookup   RecordLookup
	approver Approver
	retry    retry.Policy
	logger   *slog.Logger
}

// New constructs a Gate. A nil approver defaults to auto-skip.
func New(lookup RecordLookup, approver Approver, retryPolicy retry.Policy, logger *slog.Logger) *Gate {
	if approver == nil {
		approver = AutoApprover{Resolution: ResolutionSkip}
	}
	return &Gate{
		lookup:   lookup,
		approver: approver,
		retry:    retryPolicy,
		logger:   logging.NewComponentLogger(logger, "dupgate"),
	}
}

type lookupStep struct {
	method Method
	find   func(context.Context) (*Prior, error)
}

// Evaluate resolves the skip-vs-proceed decision for one observation. The
// identifier encodings are tried in write-format order, compact first, then
// the legacy forms historical records were written in, then the fingerprint.
//
// A lookup failure is surfaced as LookupUnavailable after the retry budget is
// spent; the gate never assumes proceed-new on error.
func (g *Gate) Evaluate(ctx context.Context, id identity.CanonicalIdentity, fingerprint string) (ProcessingDecision, error) {
	logger := logging.WithContext(ctx, g.logger)

	steps := make([]lookupStep, 0, 4)
	if !id.IsZero() {
		forms := []struct {
			method Method
			form   string
		}{
			{MethodCompact, id.Compact},
			{MethodLegacyHex, id.LegacyHex},
			{MethodLegacyHexDashed, id.LegacyHexDashed},
		}
		for _, f := range forms {
			form := f.form
			steps = append(steps, lookupStep{method: f.method, find: func(ctx context.Context) (*Prior, error) {
				return g.lookup.FindByIdentity(ctx, form)
			}})
		}
	}
	if fingerprint != "" {
		steps = append(steps, lookupStep{method: MethodFingerprint, find: func(ctx context.Context) (*Prior, error) {
			return g.lookup.FindByFingerprint(ctx, fingerprint)
		}})
	}

	for _, step := range steps {
		prior, err := g.find(ctx, step)
		if err != nil {
			return ProcessingDecision{}, services.Wrap(services.ErrLookupUnavailable,
				"dupgate", "find by "+string(step.method), "cannot determine duplication", err)
		}
		if prior == nil {
			continue
		}

		match := ProcessingDecision{Prior: prior, Method: step.method}
		logger.Info("prior record matched",
			logging.String(logging.FieldMatchMethod, string(step.method)),
			logging.Int64("record_id", prior.RecordID),
		)

		resolution, err := g.approver.Confirm(ctx, match)
		if err != nil {
			return ProcessingDecision{}, err
		}
		if resolution == ResolutionOverride {
			match.Decision = DecisionProceedOverride
		} else {
			match.Decision = DecisionSkipDuplicate
		}
		logger.Info("duplicate resolved", logging.String(logging.FieldDecision, string(match.Decision)))
		return match, nil
	}

	return ProcessingDecision{Decision: DecisionProceedNew, Method: MethodNone}, nil
}

func (g *Gate) find(ctx context.Context, step lookupStep) (*Prior, error) {
	var prior *Prior
	err := retry.Do(ctx, g.retry, g.logger, "find by "+string(step.method), func(ctx context.Context) (err error) {
		prior, err = step.find(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return prior, nil
}
