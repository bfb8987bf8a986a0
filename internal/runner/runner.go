// Package runner drives a full classification run: it probes every
// candidate endpoint with bounded concurrency, tallies the verdicts, and
// persists the relays found to be anonymous.
package runner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkosuda/proxyvet/internal/model"
)

// defaultConcurrency bounds simultaneous probes when no limit is
// configured. Free relays are slow and flaky; ten in flight keeps a run
// moving without hammering the oracle.
const defaultConcurrency = 10

// Prober classifies one candidate endpoint.
type Prober interface {
	Probe(ctx context.Context, endpoint model.Endpoint, identity model.RealIdentity) model.ProbeResult
}

// Sink persists probe results that are worth keeping.
type Sink interface {
	Put(ctx context.Context, result model.ProbeResult) error
}

// Runner executes a classification run over a candidate set.
//
// Design decision: the Runner owns the concurrency and the counters but
// delegates classification to the Prober and persistence to the Sink.
// That keeps every probe independent, which is what makes the bounded
// errgroup safe: no goroutine touches another's result.
type Runner struct {
	prober      Prober
	sink        Sink
	concurrency int
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of probes in flight. Values below one
// are ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithSink sets the store for relays classified anonymous. Without a sink
// the run only counts.
func WithSink(sink Sink) Option {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithLogger sets a custom logger for run-level logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner probing with the given Prober.
func New(prober Prober, opts ...Option) *Runner {
	r := &Runner{
		prober:      prober,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run probes every candidate and returns the final tallies. Each candidate
// is counted exactly once: anonymous, transparent, or failed. Relays
// classified anonymous are written to the sink as they are found; a sink
// failure is logged but does not change the tally, the relay was still
// anonymous.
//
// An empty candidate set returns zero tallies without touching the
// network. Cancelling the context stops unstarted probes; the error
// reports the cancellation alongside the tallies gathered so far.
func (r *Runner) Run(ctx context.Context, candidates []model.Endpoint, identity model.RealIdentity) (model.CountersSnapshot, error) {
	var counters model.Counters

	if len(candidates) == 0 {
		r.logger.Info("no candidates to probe")
		return counters.Snapshot(), nil
	}

	r.logger.Info("starting classification run",
		"candidates", len(candidates),
		"concurrency", r.concurrency,
		"identity", identity.String(),
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, endpoint := range candidates {
		endpoint := endpoint
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result := r.prober.Probe(ctx, endpoint, identity)
			counters.Record(result.Classification)

			r.logger.Debug("candidate classified",
				"endpoint", string(endpoint),
				"classification", result.Classification.String(),
				"reason", result.Reason,
			)

			if r.sink != nil && result.Persistable() {
				if err := r.sink.Put(ctx, result); err != nil {
					r.logger.Warn("failed to persist relay",
						"endpoint", string(endpoint),
						"error", err,
					)
				}
			}

			return nil
		})
	}

	err := g.Wait()

	snapshot := counters.Snapshot()
	r.logger.Info("classification run complete",
		"anonymous", snapshot.Anonymous,
		"transparent", snapshot.Transparent,
		"failed", snapshot.Failed,
		"elapsed", time.Since(startTime),
	)

	return snapshot, err
}
