package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewline/queue-api/internal/order"
)

// OrderView is the read projection of an order. Position and estimated wait
// are derived from live scheduler state at snapshot time; wait is reported in
// whole minutes, rounded up, as agreed at the boundary.
type OrderView struct {
	ID                   uuid.UUID      `json:"id"`
	CustomerName         string         `json:"customer_name"`
	Items                []string       `json:"items"`
	Priority             order.Priority `json:"priority"`
	Status               order.Status   `json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	StartedAt            *time.Time     `json:"started_at,omitempty"`
	FinishedAt           *time.Time     `json:"finished_at,omitempty"`
	PositionInQueue      int            `json:"position_in_queue,omitempty"`
	EstimatedWaitMinutes int            `json:"estimated_wait_time"`
}

// QueueStatus is a consistent point-in-time view of the queue.
type QueueStatus struct {
	QueueLength          int         `json:"queue_length"`
	PreparingCount       int         `json:"preparing_count"`
	EstimatedWaitMinutes int         `json:"estimated_wait_time"`
	QueueOrders          []OrderView `json:"queue_orders"`
	PreparingOrders      []OrderView `json:"preparing_orders"`
}

// Stats are the running counters kept by the aggregator.
type Stats struct {
	TotalOrders     int     `json:"total_orders"`
	CompletedToday  int     `json:"completed_today"`
	AverageWaitTime float64 `json:"average_wait_time"`
	PeakQueueLength int     `json:"peak_queue_length"`
	CancelledOrders int     `json:"cancelled_orders"`
}

// AnalyticsSnapshot is the full aggregator state as of call time.
type AnalyticsSnapshot struct {
	Stats             Stats                  `json:"stats"`
	QueueByPriority   map[order.Priority]int `json:"queue_by_priority"`
	RecentCompletions []OrderView            `json:"recent_completions"`
}

// minutesCeil converts a duration to whole minutes, rounding up. Negative
// durations clamp to zero.
func minutesCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
