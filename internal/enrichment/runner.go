package enrichment

import (
	"context"
	"iter"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RunnerConfig controls batch pacing.
type RunnerConfig struct {
	BatchSize    int
	RequestDelay time.Duration
	// BatchDelay defaults to twice RequestDelay.
	BatchDelay time.Duration
	// AuditPath, when set, receives one CSV row per call.
	AuditPath string
}

// DefaultRunnerConfig returns 5-record batches, 1.2s between calls and 2.4s
// between batches.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		BatchSize:    5,
		RequestDelay: 1200 * time.Millisecond,
		BatchDelay:   2400 * time.Millisecond,
	}
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	d := DefaultRunnerConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
	if c.BatchDelay <= 0 {
		c.BatchDelay = 2 * c.RequestDelay
	}
	return c
}

// Outcome is one completed record.
type Outcome struct {
	// Index is the record's position in the runner input.
	Index  int
	Batch  int
	Person Person
	Result Result
}

// Status is shorthand for o.Result.Status().
func (o Outcome) Status() Status {
	return o.Result.Status()
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PersonEnricher is the single-record call the runner drives.
type PersonEnricher interface {
	Enrich(ctx context.Context, p Person, auditPath string) Result
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLimiter shares a process-wide limiter with the runner.
func WithLimiter(l *rate.Limiter) RunnerOption {
	return func(r *Runner) {
		r.limiter = l
	}
}

// WithSleep replaces the pacing sleep.
func WithSleep(fn SleepFunc) RunnerOption {
	return func(r *Runner) {
		r.sleep = fn
	}
}

// WithRunnerLogger sets the progress logger.
func WithRunnerLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// Runner executes enrichment calls strictly one at a time, in fixed-size
// batches, pausing between calls and between batches.
type Runner struct {
	enricher PersonEnricher
	cfg      RunnerConfig
	limiter  *rate.Limiter
	sleep    SleepFunc
	log      *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(enricher PersonEnricher, cfg RunnerConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		enricher: enricher,
		cfg:      cfg.withDefaults(),
		sleep:    sleepCtx,
		log:      zap.L(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Config returns the effective configuration.
func (r *Runner) Config() RunnerConfig {
	return r.cfg
}

// Stream yields one Outcome per completed record, in input order. The
// sequence stops early when ctx is cancelled or the consumer stops pulling.
// It is single-use: each range over it starts a new run.
func (r *Runner) Stream(ctx context.Context, persons []Person) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		size := r.cfg.BatchSize
		for start, batch := 0, 0; start < len(persons); start, batch = start+size, batch+1 {
			end := min(start+size, len(persons))
			r.log.Debug("enrichment: batch start",
				zap.Int("batch", batch),
				zap.Int("from", start),
				zap.Int("to", end),
				zap.Int("total", len(persons)),
			)

			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				if r.limiter != nil {
					if err := r.limiter.Wait(ctx); err != nil {
						if ctx.Err() != nil {
							return
						}
						// Wait refuses early when admission would pass the
						// ctx deadline; the record ends failed, not dropped.
						res := Result{Err: &TransportError{Err: eris.Wrap(err, "enrichment: rate limiter wait")}}
						yield(Outcome{Index: i, Batch: batch, Person: persons[i], Result: res})
						return
					}
				}

				res := r.enricher.Enrich(ctx, persons[i], r.cfg.AuditPath)
				if !yield(Outcome{Index: i, Batch: batch, Person: persons[i], Result: res}) {
					return
				}

				if i < end-1 {
					if err := r.sleep(ctx, r.cfg.RequestDelay); err != nil {
						return
					}
				}
			}

			if end < len(persons) {
				if err := r.sleep(ctx, r.cfg.BatchDelay); err != nil {
					return
				}
			}
		}
	}
}

// Run enriches every person and returns only the succeeded results, in input
// order. On cancellation it returns what succeeded so far with the context
// error; when the run stops early for any other reason the error wraps
// ErrRunIncomplete.
func (r *Runner) Run(ctx context.Context, persons []Person) ([]Result, error) {
	var (
		results []Result
		counts  = map[Status]int{}
		seen    int
	)
	for o := range r.Stream(ctx, persons) {
		seen++
		counts[o.Status()]++
		if o.Status() == StatusSucceeded {
			results = append(results, o.Result)
		}
	}

	r.log.Info("enrichment: run complete",
		zap.Int("total", len(persons)),
		zap.Int("succeeded", counts[StatusSucceeded]),
		zap.Int("not_found", counts[StatusNotFound]),
		zap.Int("failed", counts[StatusFailed]),
	)

	if err := ctx.Err(); err != nil {
		return results, eris.Wrap(err, "enrichment: run interrupted")
	}
	if seen < len(persons) {
		return results, eris.Wrapf(ErrRunIncomplete, "%d of %d records", seen, len(persons))
	}
	return results, nil
}
