package service

import (
	"time"

	"github.com/brewline/queue-api/internal/order"
)

// dayKeyLayout formats the calendar-day bucket for completed_today, in the
// configured location. The counter reads as zero once the local day rolls over.
const dayKeyLayout = "2006-01-02"

// aggregator keeps the running statistics updated transactionally with every
// queueing or terminal event. It is guarded by the engine's lock.
type aggregator struct {
	loc            *time.Location
	recentCapacity int

	totalOrders    int
	cancelled      int
	completedDay   string
	completedCount int
	waitTotal      time.Duration
	waitSamples    int
	peakQueue      int

	// recent holds completed orders, most recent first, capped at
	// recentCapacity.
	recent []order.Order
}

func newAggregator(loc *time.Location, recentCapacity int) *aggregator {
	if loc == nil {
		loc = time.Local
	}
	if recentCapacity <= 0 {
		recentCapacity = 20
	}
	return &aggregator{loc: loc, recentCapacity: recentCapacity}
}

// recordCreated bumps the monotonic order counter.
func (a *aggregator) recordCreated() {
	a.totalOrders++
}

// observeQueueLen updates the peak-queue high-water mark.
func (a *aggregator) observeQueueLen(n int) {
	if n > a.peakQueue {
		a.peakQueue = n
	}
}

// recordCompleted folds a completed order into the daily counter, the running
// wait mean, and the recent-completions list.
func (a *aggregator) recordCompleted(o *order.Order) {
	finished := *o.FinishedAt
	day := finished.In(a.loc).Format(dayKeyLayout)
	if day != a.completedDay {
		a.completedDay = day
		a.completedCount = 0
	}
	a.completedCount++

	a.waitTotal += finished.Sub(o.CreatedAt)
	a.waitSamples++

	a.recent = append([]order.Order{*o.Clone()}, a.recent...)
	if len(a.recent) > a.recentCapacity {
		a.recent = a.recent[:a.recentCapacity]
	}
}

func (a *aggregator) recordCancelled() {
	a.cancelled++
}

// completedToday returns the count for the current calendar day at now.
func (a *aggregator) completedToday(now time.Time) int {
	if now.In(a.loc).Format(dayKeyLayout) != a.completedDay {
		return 0
	}
	return a.completedCount
}

// averageWaitMinutes returns the running mean of (finished - created) over
// completions, in minutes.
func (a *aggregator) averageWaitMinutes() float64 {
	if a.waitSamples == 0 {
		return 0
	}
	return (a.waitTotal / time.Duration(a.waitSamples)).Minutes()
}
