package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Errors returned when parsing boundary values.
var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Priority is the scheduling tier of an order. Higher rank is served first.
type Priority string

const (
	PriorityVIP     Priority = "VIP"
	PriorityMobile  Priority = "MOBILE_ORDER"
	PriorityRegular Priority = "REGULAR"
)

// priorityRank is the explicit ranking table: VIP > MOBILE_ORDER > REGULAR.
// A zero rank means the value is not a valid priority.
var priorityRank = map[Priority]int{
	PriorityVIP:     3,
	PriorityMobile:  2,
	PriorityRegular: 1,
}

// Tiers lists all priorities from highest to lowest rank.
func Tiers() []Priority {
	return []Priority{PriorityVIP, PriorityMobile, PriorityRegular}
}

// Rank returns the scheduling rank of p. Invalid priorities rank 0.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// ParsePriority canonicalizes a wire value ("vip", "Mobile_Order", ...) to a
// Priority. Returns ErrInvalidPriority for unknown values.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := priorityRank[p]; !ok {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Status is the lifecycle state of an order.
//
// Transitions: queued -> preparing -> {completed, cancelled}, and
// queued -> cancelled. Completed and cancelled are terminal.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusPreparing Status = "preparing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus canonicalizes a wire value to a Status, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusQueued:
		return StatusQueued, nil
	case StatusPreparing:
		return StatusPreparing, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order is a single customer order. Position in queue and estimated wait are
// derived from live scheduler state on every read and never stored here.
type Order struct {
	ID           uuid.UUID
	CustomerName string
	Items        []string
	Priority     Priority
	Status       Status
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time

	// Seq is the arrival sequence assigned at creation. It breaks ties
	// between orders of equal priority created at the same instant.
	Seq uint64
}

// Clone returns a deep copy so callers never share mutable state with the
// engine's record.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]string(nil), o.Items...)
	if o.StartedAt != nil {
		t := *o.StartedAt
		c.StartedAt = &t
	}
	if o.FinishedAt != nil {
		t := *o.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Before reports whether o sorts ahead of other in the queue: higher priority
// rank first, then earlier creation, then lower arrival sequence.
func (o *Order) Before(other *Order) bool {
	if o.Priority.Rank() != other.Priority.Rank() {
		return o.Priority.Rank() > other.Priority.Rank()
	}
	if !o.CreatedAt.Equal(other.CreatedAt) {
		return o.CreatedAt.Before(other.CreatedAt)
	}
	return o.Seq < other.Seq
}
