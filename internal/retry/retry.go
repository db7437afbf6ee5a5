package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"reckon/internal/config"
	"reckon/internal/logging"
)

// Policy bounds retries of external calls: a maximum attempt count with
// exponential backoff between attempts.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy returns the repository default retry bounds.
func DefaultPolicy() Policy {
	return PolicyFromConfig(nil)
}

// PolicyFromConfig builds a Policy from configuration, falling back to
// repository defaults when cfg is nil.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: time.Duration(cfg.Retry.InitialIntervalMS) * time.Millisecond,
		MaxInterval:     time.Duration(cfg.Retry.MaxIntervalMS) * time.Millisecond,
	}
}

func (p Policy) normalized() Policy {
	d := config.Default().Retry
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = time.Duration(d.InitialIntervalMS) * time.Millisecond
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = time.Duration(d.MaxIntervalMS) * time.Millisecond
	}
	return p
}

// Permanent marks an error as fatal so Do stops retrying and returns it
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do runs fn with bounded exponential backoff. Every error is retried unless
// wrapped with Permanent. The final error is returned after the attempt
// budget is exhausted or the context is canceled.
func Do(ctx context.Context, policy Policy, logger *slog.Logger, operation string, fn func(context.Context) error) error {
	policy = policy.normalized()
	if logger == nil {
		logger = logging.NewNop()
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = policy.InitialInterval
	expo.MaxInterval = policy.MaxInterval
	expo.MaxElapsedTime = 0 // attempts bound the retry budget, not wall time

	attempt := 0
	wrapped := func() error {
		attempt++
		err := fn(ctx)
		if err != nil && attempt < policy.MaxAttempts {
			logger.Warn("retrying operation",
				logging.String("operation", operation),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", policy.MaxAttempts),
				logging.Error(err),
			)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(policy.MaxAttempts-1)), ctx)
	return backoff.Retry(wrapped, b)
}
