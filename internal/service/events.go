package service

import "github.com/brewline/queue-api/internal/order"

// EventType identifies which mutation produced a queue change event.
type EventType string

const (
	EventOrderCreated   EventType = "order_created"
	EventOrderStarted   EventType = "order_started"
	EventOrderCompleted EventType = "order_completed"
	EventOrderCancelled EventType = "order_cancelled"
)

// Event is the change record emitted after every successful mutation. It
// carries a copy of the mutated order and a queue snapshot taken atomically
// with the mutation, so subscribers never observe partially applied state.
type Event struct {
	Type   EventType
	Order  order.Order
	Status QueueStatus
}

// Publisher receives events from the engine. Publish must not block: it runs
// inside the engine's critical section so subscribers observe events in commit
// order, and delivery is best-effort and asynchronous with respect to the
// mutation that produced the event.
type Publisher interface {
	Publish(Event)
}
