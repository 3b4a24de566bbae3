// Package backoff retries remote calls with exponential backoff and jitter.
package backoff

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy configures retry behaviour
type Policy struct {
	MaxTries  int
	BaseDelay time.Duration
	Factor    float64
	Jitter    time.Duration // upper bound (exclusive) of the uniform random jitter
}

// DefaultPolicy returns the default policy: 5 tries, 0.6s base, factor 2, jitter [0, 0.2s)
func DefaultPolicy() Policy {
	return Policy{
		MaxTries:  5,
		BaseDelay: 600 * time.Millisecond,
		Factor:    2.0,
		Jitter:    200 * time.Millisecond,
	}
}

// withDefaults fills zero fields from DefaultPolicy
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxTries <= 0 {
		p.MaxTries = d.MaxTries
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.Factor <= 0 {
		p.Factor = d.Factor
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

// BaseDelayFor returns the delay before jitter for the given 1-based attempt
func (p Policy) BaseDelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt-1)))
}

// Classifier reports whether err is transient and worth retrying
type Classifier func(err error) bool

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Executor runs operations under a Policy.
// It holds no per-call state and can wrap any number of operations.
type Executor struct {
	policy   Policy
	classify Classifier
	logger   *zap.Logger
	sleep    Sleeper
	jitter   func(max time.Duration) time.Duration
}

// Option customizes an Executor
type Option func(*Executor)

// WithSleeper replaces the sleep function (used by tests)
func WithSleeper(s Sleeper) Option {
	return func(e *Executor) { e.sleep = s }
}

// WithJitter replaces the random jitter source
func WithJitter(j func(max time.Duration) time.Duration) Option {
	return func(e *Executor) { e.jitter = j }
}

// New creates an executor with the given policy and classifier
func New(policy Policy, classify Classifier, logger *zap.Logger, opts ...Option) *Executor {
	if classify == nil {
		classify = IsTransient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		policy:   policy.withDefaults(),
		classify: classify,
		logger:   logger,
		sleep:    sleepContext,
		jitter:   uniformJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithClassifier returns a copy of the executor using a different classifier
func (e *Executor) WithClassifier(classify Classifier) *Executor {
	cp := *e
	cp.classify = classify
	return &cp
}

// Policy returns the effective policy
func (e *Executor) Policy() Policy {
	return e.policy
}

// Run executes op, retrying transient failures
func (e *Executor) Run(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Do(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do executes op up to MaxTries times and returns its first successful value.
// Non-transient failures are returned immediately; after the last attempt the
// last failure is returned.
func Do[T any](ctx context.Context, e *Executor, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxTries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !e.classify(err) {
			return zero, err
		}
		if attempt == e.policy.MaxTries {
			break
		}

		delay := e.policy.BaseDelayFor(attempt) + e.jitter(e.policy.Jitter)
		e.logger.Warn("Transient failure, retrying",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := e.sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("%s: retry interrupted: %w", name, err)
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", name, e.policy.MaxTries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
