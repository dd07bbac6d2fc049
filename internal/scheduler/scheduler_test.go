package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewline/queue-api/internal/order"
)

var seq uint64

func queued(p order.Priority, created time.Time) *order.Order {
	seq++
	return &order.Order{
		ID:        uuid.New(),
		Priority:  p,
		Status:    order.StatusQueued,
		CreatedAt: created,
		Seq:       seq,
	}
}

func TestRankingAcrossTiers(t *testing.T) {
	q := New()
	base := time.Now()

	regular := queued(order.PriorityRegular, base)
	mobile := queued(order.PriorityMobile, base.Add(time.Second))
	vip := queued(order.PriorityVIP, base.Add(2*time.Second))

	// Insert lowest priority first; a later higher-priority arrival jumps
	// ahead of queued lower-priority orders.
	q.Enqueue(regular)
	q.Enqueue(mobile)
	q.Enqueue(vip)

	got := q.InOrder()
	want := []uuid.UUID{vip.ID, mobile.ID, regular.ID}
	for i, o := range got {
		if o.ID != want[i] {
			t.Fatalf("rank %d = %s, want %s", i+1, o.ID, want[i])
		}
	}
}

func TestFIFOWithinTier(t *testing.T) {
	q := New()
	base := time.Now()

	first := queued(order.PriorityVIP, base)
	second := queued(order.PriorityVIP, base.Add(time.Second))

	q.Enqueue(second)
	q.Enqueue(first)

	next, ok := q.PeekNext()
	if !ok || next.ID != first.ID {
		t.Fatalf("PeekNext = %v, want the earlier VIP order", next)
	}
}

func TestDequeueNext(t *testing.T) {
	q := New()
	base := time.Now()

	a := queued(order.PriorityRegular, base)
	b := queued(order.PriorityRegular, base.Add(time.Second))
	q.Enqueue(a)
	q.Enqueue(b)

	got, err := q.DequeueNext()
	if err != nil {
		t.Fatalf("DequeueNext: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("DequeueNext = %s, want %s", got.ID, a.ID)
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d after dequeue, want 1", q.Len())
	}
	if q.Contains(a.ID) {
		t.Error("dequeued order still reported as queued")
	}
}

func TestDequeueEmpty(t *testing.T) {
	q := New()
	if _, err := q.DequeueNext(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("DequeueNext on empty queue: %v, want ErrEmpty", err)
	}
}

func TestRemove(t *testing.T) {
	q := New()
	base := time.Now()

	a := queued(order.PriorityRegular, base)
	b := queued(order.PriorityRegular, base.Add(time.Second))
	c := queued(order.PriorityRegular, base.Add(2*time.Second))
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	if _, err := q.Remove(b.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// Positions must reflect the new total ordering exactly.
	pos := q.Positions()
	if pos[a.ID] != 1 || pos[c.ID] != 2 {
		t.Fatalf("positions after removal = %v", pos)
	}
	if _, ok := pos[b.ID]; ok {
		t.Error("removed order still has a position")
	}

	if _, err := q.Remove(b.ID); !errors.Is(err, ErrNotQueued) {
		t.Fatalf("second Remove: %v, want ErrNotQueued", err)
	}
	if _, err := q.Remove(uuid.New()); !errors.Is(err, ErrNotQueued) {
		t.Fatalf("Remove unknown id: %v, want ErrNotQueued", err)
	}
}

func TestPositionsRecomputed(t *testing.T) {
	q := New()
	base := time.Now()

	regA := queued(order.PriorityRegular, base)
	regB := queued(order.PriorityRegular, base.Add(time.Second))
	q.Enqueue(regA)
	q.Enqueue(regB)

	if got := q.Position(regA.ID); got != 1 {
		t.Fatalf("Position(regA) = %d, want 1", got)
	}

	// A VIP arrival displaces both regulars.
	vip := queued(order.PriorityVIP, base.Add(2*time.Second))
	q.Enqueue(vip)

	pos := q.Positions()
	if pos[vip.ID] != 1 || pos[regA.ID] != 2 || pos[regB.ID] != 3 {
		t.Fatalf("positions after VIP arrival = %v", pos)
	}
	if got := q.Position(uuid.New()); got != 0 {
		t.Fatalf("Position(unknown) = %d, want 0", got)
	}
}

func TestCountByPriority(t *testing.T) {
	q := New()
	base := time.Now()

	q.Enqueue(queued(order.PriorityVIP, base))
	q.Enqueue(queued(order.PriorityRegular, base))
	q.Enqueue(queued(order.PriorityRegular, base.Add(time.Second)))

	counts := q.CountByPriority()
	if counts[order.PriorityVIP] != 1 {
		t.Errorf("VIP count = %d, want 1", counts[order.PriorityVIP])
	}
	if counts[order.PriorityMobile] != 0 {
		t.Errorf("MOBILE_ORDER count = %d, want 0 (tier must still be present)", counts[order.PriorityMobile])
	}
	if counts[order.PriorityRegular] != 2 {
		t.Errorf("REGULAR count = %d, want 2", counts[order.PriorityRegular])
	}
}
