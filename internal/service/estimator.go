package service

import (
	"time"

	"github.com/brewline/queue-api/internal/order"
)

// estimator computes per-order wait estimates from scheduler state and the
// observed history of preparation spans. No authoritative formula exists at
// the boundary; the policy here is:
//
//	estimate(queued)    = remaining(active) + (position-1) * avgPrep
//	estimate(preparing) = remaining(active)
//
// where avgPrep is the running mean of (finished - started) over completed
// orders, falling back to a configured default until history exists.
// Estimates are recomputed on every read; position is derived state and is
// never cached.
type estimator struct {
	defaultPrep time.Duration
	prepTotal   time.Duration
	prepSamples int
}

func newEstimator(defaultPrep time.Duration) *estimator {
	return &estimator{defaultPrep: defaultPrep}
}

// observe records the preparation span of a completed order.
func (e *estimator) observe(span time.Duration) {
	if span < 0 {
		return
	}
	e.prepTotal += span
	e.prepSamples++
}

// avgPrep returns the mean observed preparation duration, or the configured
// default when no completions have been observed yet.
func (e *estimator) avgPrep() time.Duration {
	if e.prepSamples == 0 {
		return e.defaultPrep
	}
	return e.prepTotal / time.Duration(e.prepSamples)
}

// remaining returns the estimated time left for the active order, floored at
// zero once it has been preparing longer than the average span.
func (e *estimator) remaining(active *order.Order, now time.Time) time.Duration {
	if active == nil || active.StartedAt == nil {
		return 0
	}
	left := e.avgPrep() - now.Sub(*active.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// estimate returns the wait for the order at the given 1-based queue
// position, given the currently active order (nil when the slot is free).
func (e *estimator) estimate(position int, active *order.Order, now time.Time) time.Duration {
	return e.remaining(active, now) + time.Duration(position-1)*e.avgPrep()
}

// nextArrival returns the wait a hypothetical new submission would see:
// everything currently queued plus the active order's remaining time.
func (e *estimator) nextArrival(queueLen int, active *order.Order, now time.Time) time.Duration {
	return e.remaining(active, now) + time.Duration(queueLen)*e.avgPrep()
}
