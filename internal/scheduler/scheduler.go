package scheduler

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/brewline/queue-api/internal/order"
)

// Errors returned by the queue.
var (
	ErrEmpty     = errors.New("queue is empty")
	ErrNotQueued = errors.New("order is not in the queue")
)

// Queue maintains the total order over queued orders: priority rank
// descending, creation time ascending, arrival sequence ascending. Structural
// operations are O(log n).
//
// Queue is not safe for concurrent use; the owning service serializes access.
type Queue struct {
	tree *btree.BTreeG[*order.Order]
	byID map[uuid.UUID]*order.Order
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		tree: btree.NewBTreeG(func(a, b *order.Order) bool { return a.Before(b) }),
		byID: make(map[uuid.UUID]*order.Order),
	}
}

// Len returns the number of queued orders.
func (q *Queue) Len() int {
	return q.tree.Len()
}

// Enqueue inserts o according to the ranking rule. The sort key (priority,
// creation time, sequence) must not change while o is queued.
func (q *Queue) Enqueue(o *order.Order) {
	q.tree.Set(o)
	q.byID[o.ID] = o
}

// PeekNext returns the rank-1 order without removing it.
func (q *Queue) PeekNext() (*order.Order, bool) {
	return q.tree.Min()
}

// DequeueNext removes and returns the rank-1 order.
func (q *Queue) DequeueNext() (*order.Order, error) {
	o, ok := q.tree.PopMin()
	if !ok {
		return nil, ErrEmpty
	}
	delete(q.byID, o.ID)
	return o, nil
}

// Remove removes an arbitrary queued order, used for cancellation.
func (q *Queue) Remove(id uuid.UUID) (*order.Order, error) {
	o, ok := q.byID[id]
	if !ok {
		return nil, ErrNotQueued
	}
	q.tree.Delete(o)
	delete(q.byID, id)
	return o, nil
}

// Contains reports whether the order is currently queued.
func (q *Queue) Contains(id uuid.UUID) bool {
	_, ok := q.byID[id]
	return ok
}

// InOrder returns all queued orders from rank 1 down.
func (q *Queue) InOrder() []*order.Order {
	out := make([]*order.Order, 0, q.tree.Len())
	q.tree.Scan(func(o *order.Order) bool {
		out = append(out, o)
		return true
	})
	return out
}

// Positions returns the 1-based rank of every queued order under the current
// total ordering. Recomputed from the tree on every call, never cached.
func (q *Queue) Positions() map[uuid.UUID]int {
	pos := make(map[uuid.UUID]int, q.tree.Len())
	rank := 0
	q.tree.Scan(func(o *order.Order) bool {
		rank++
		pos[o.ID] = rank
		return true
	})
	return pos
}

// Position returns the 1-based rank of a single queued order, or 0 if it is
// not queued.
func (q *Queue) Position(id uuid.UUID) int {
	target, ok := q.byID[id]
	if !ok {
		return 0
	}
	rank := 0
	found := 0
	q.tree.Scan(func(o *order.Order) bool {
		rank++
		if o.ID == target.ID {
			found = rank
			return false
		}
		return true
	})
	return found
}

// CountByPriority returns the live count of queued orders per tier. Every
// tier appears in the result, zero included.
func (q *Queue) CountByPriority() map[order.Priority]int {
	counts := make(map[order.Priority]int, 3)
	for _, p := range order.Tiers() {
		counts[p] = 0
	}
	q.tree.Scan(func(o *order.Order) bool {
		counts[o.Priority]++
		return true
	})
	return counts
}
