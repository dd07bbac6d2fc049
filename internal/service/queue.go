package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brewline/queue-api/internal/order"
	"github.com/brewline/queue-api/internal/scheduler"
)

// Errors returned by the queue service.
var (
	ErrEmptyName        = errors.New("customer_name is required")
	ErrEmptyItems       = errors.New("items are required")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotQueued        = errors.New("order is not queued")
	ErrNotPreparing     = errors.New("order is not being prepared")
	ErrAlreadyTerminal  = errors.New("order is already completed or cancelled")
	ErrAlreadyPreparing = errors.New("another order is already being prepared")
	ErrQueueEmpty       = errors.New("no orders in queue")
)

const (
	defaultPrepTime  = 5 * time.Minute
	defaultPageSize  = 8
	defaultRecentCap = 20
)

// Options configures a QueueService. Zero values fall back to defaults.
type Options struct {
	// DefaultPrepTime seeds the wait estimator until completions exist.
	DefaultPrepTime time.Duration
	// PageSize is the queue listing length used for status reads and event
	// snapshots when the caller does not ask for a specific limit.
	PageSize int
	// RecentCapacity bounds the recent-completions list.
	RecentCapacity int
	// Location sets the calendar-day boundary for completed_today.
	Location *time.Location
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// QueueService is the order store, lifecycle state machine, scheduler,
// estimator and aggregator behind a single serialized critical section. All
// mutations run under the write lock; reads take consistent snapshots under
// the read lock and never observe a partially applied mutation.
type QueueService struct {
	mu sync.RWMutex

	orders    map[uuid.UUID]*order.Order
	queue     *scheduler.Queue
	preparing *order.Order
	seq       uint64

	est   *estimator
	stats *aggregator

	pageSize int
	now      func() time.Time
	pub      Publisher
	logger   *zap.Logger
}

// New creates a QueueService. pub may be nil when no subscribers exist.
func New(opts Options, pub Publisher, logger *zap.Logger) *QueueService {
	if opts.DefaultPrepTime <= 0 {
		opts.DefaultPrepTime = defaultPrepTime
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.RecentCapacity <= 0 {
		opts.RecentCapacity = defaultRecentCap
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueService{
		orders:   make(map[uuid.UUID]*order.Order),
		queue:    scheduler.New(),
		est:      newEstimator(opts.DefaultPrepTime),
		stats:    newAggregator(opts.Location, opts.RecentCapacity),
		pageSize: opts.PageSize,
		now:      opts.Now,
		pub:      pub,
		logger:   logger.Named("queue"),
	}
}

// SubmitRequest is the validated input for a customer submission.
type SubmitRequest struct {
	CustomerName string
	Items        []string
	Priority     string
}

// Submit creates a new order in the queued state and schedules it.
func (s *QueueService) Submit(ctx context.Context, req SubmitRequest) (OrderView, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return OrderView{}, ErrEmptyName
	}
	if len(req.Items) == 0 {
		return OrderView{}, ErrEmptyItems
	}
	priority, err := order.ParsePriority(req.Priority)
	if err != nil {
		return OrderView{}, err
	}

	s.mu.Lock()
	s.seq++
	o := &order.Order{
		ID:           uuid.New(),
		CustomerName: name,
		Items:        append([]string(nil), req.Items...),
		Priority:     priority,
		Status:       order.StatusQueued,
		CreatedAt:    s.now(),
		Seq:          s.seq,
	}
	s.orders[o.ID] = o
	s.queue.Enqueue(o)
	s.stats.recordCreated()
	s.stats.observeQueueLen(s.queue.Len())

	view := s.viewLocked(o)
	s.publish(s.eventLocked(EventOrderCreated, o))
	s.mu.Unlock()

	s.logger.Info("order submitted",
		zap.String("order_id", o.ID.String()),
		zap.String("priority", string(priority)),
		zap.Int("position", view.PositionInQueue))
	return view, nil
}

// StartNext atomically claims the rank-1 queued order and transitions it to
// preparing. Exactly one of any number of concurrent callers succeeds per
// order; the single active preparation slot is enforced here.
func (s *QueueService) StartNext(ctx context.Context) (OrderView, error) {
	s.mu.Lock()
	if s.preparing != nil {
		s.mu.Unlock()
		return OrderView{}, ErrAlreadyPreparing
	}
	o, err := s.queue.DequeueNext()
	if err != nil {
		s.mu.Unlock()
		return OrderView{}, ErrQueueEmpty
	}
	view := s.startLocked(o)
	s.mu.Unlock()

	s.logger.Info("order started", zap.String("order_id", o.ID.String()))
	return view, nil
}

// BeginPreparing transitions a specific queued order to preparing. Fails when
// the active slot is occupied, the id is unknown, or the order is not queued.
func (s *QueueService) BeginPreparing(ctx context.Context, id uuid.UUID) (OrderView, error) {
	s.mu.Lock()
	o, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return OrderView{}, ErrOrderNotFound
	}
	if s.preparing != nil {
		s.mu.Unlock()
		return OrderView{}, ErrAlreadyPreparing
	}
	if o.Status != order.StatusQueued {
		s.mu.Unlock()
		return OrderView{}, ErrNotQueued
	}
	if _, err := s.queue.Remove(id); err != nil {
		s.mu.Unlock()
		return OrderView{}, ErrNotQueued
	}
	view := s.startLocked(o)
	s.mu.Unlock()

	s.logger.Info("order started", zap.String("order_id", id.String()))
	return view, nil
}

// startLocked flips a dequeued order into the active slot and publishes the
// started event. Caller holds the write lock and has already removed o from
// the queue.
func (s *QueueService) startLocked(o *order.Order) OrderView {
	now := s.now()
	o.Status = order.StatusPreparing
	o.StartedAt = &now
	s.preparing = o
	s.publish(s.eventLocked(EventOrderStarted, o))
	return s.viewLocked(o)
}

// Complete transitions the preparing order to completed and folds it into the
// analytics aggregator and the estimator's history.
func (s *QueueService) Complete(ctx context.Context, id uuid.UUID) (OrderView, error) {
	s.mu.Lock()
	o, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return OrderView{}, ErrOrderNotFound
	}
	if o.Status.Terminal() {
		s.mu.Unlock()
		return OrderView{}, ErrAlreadyTerminal
	}
	if o.Status != order.StatusPreparing {
		s.mu.Unlock()
		return OrderView{}, ErrNotPreparing
	}
	now := s.now()
	o.Status = order.StatusCompleted
	o.FinishedAt = &now
	s.preparing = nil
	if o.StartedAt != nil {
		s.est.observe(now.Sub(*o.StartedAt))
	}
	s.stats.recordCompleted(o)

	view := s.viewLocked(o)
	s.publish(s.eventLocked(EventOrderCompleted, o))
	s.mu.Unlock()

	s.logger.Info("order completed", zap.String("order_id", id.String()))
	return view, nil
}

// Cancel transitions a queued or preparing order to cancelled. Terminal
// orders are immutable.
func (s *QueueService) Cancel(ctx context.Context, id uuid.UUID) (OrderView, error) {
	s.mu.Lock()
	o, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return OrderView{}, ErrOrderNotFound
	}
	switch {
	case o.Status == order.StatusQueued:
		if _, err := s.queue.Remove(id); err != nil {
			s.mu.Unlock()
			return OrderView{}, ErrNotQueued
		}
	case o.Status == order.StatusPreparing:
		s.preparing = nil
	default:
		s.mu.Unlock()
		return OrderView{}, ErrAlreadyTerminal
	}
	now := s.now()
	o.Status = order.StatusCancelled
	o.FinishedAt = &now
	s.stats.recordCancelled()

	view := s.viewLocked(o)
	s.publish(s.eventLocked(EventOrderCancelled, o))
	s.mu.Unlock()

	s.logger.Info("order cancelled", zap.String("order_id", id.String()))
	return view, nil
}

// QueueStatus returns a consistent snapshot of the queue. limit trims the
// queue listing; zero or negative means the configured page size.
func (s *QueueService) QueueStatus(limit int) QueueStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(limit)
}

// CustomerOrders returns every order whose customer name matches, any status,
// most recent first. Matching is case-insensitive; queued orders carry their
// live position and estimate.
func (s *QueueService) CustomerOrders(name string) []OrderView {
	name = strings.TrimSpace(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*order.Order, 0)
	for _, o := range s.orders {
		if strings.EqualFold(o.CustomerName, name) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Seq > matched[j].Seq
	})

	views := make([]OrderView, len(matched))
	for i, o := range matched {
		views[i] = s.viewLocked(o)
	}
	return views
}

// Analytics returns the aggregator state as of call time.
func (s *QueueService) Analytics() AnalyticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	recent := make([]OrderView, len(s.stats.recent))
	for i := range s.stats.recent {
		recent[i] = s.terminalView(&s.stats.recent[i])
	}
	return AnalyticsSnapshot{
		Stats: Stats{
			TotalOrders:     s.stats.totalOrders,
			CompletedToday:  s.stats.completedToday(now),
			AverageWaitTime: s.stats.averageWaitMinutes(),
			PeakQueueLength: s.stats.peakQueue,
			CancelledOrders: s.stats.cancelled,
		},
		QueueByPriority:   s.queue.CountByPriority(),
		RecentCompletions: recent,
	}
}

// --- Snapshot helpers (caller holds at least the read lock) ---

// statusLocked builds the queue snapshot: ordered listing trimmed to limit,
// each entry annotated with its recomputed position and estimate.
func (s *QueueService) statusLocked(limit int) QueueStatus {
	if limit <= 0 {
		limit = s.pageSize
	}
	now := s.now()
	queued := s.queue.InOrder()

	listing := make([]OrderView, 0, min(limit, len(queued)))
	for i, o := range queued {
		if i >= limit {
			break
		}
		listing = append(listing, s.annotated(o, i+1, now))
	}

	preparing := make([]OrderView, 0, 1)
	preparingCount := 0
	if s.preparing != nil {
		preparingCount = 1
		preparing = append(preparing, s.annotated(s.preparing, 0, now))
	}

	return QueueStatus{
		QueueLength:          len(queued),
		PreparingCount:       preparingCount,
		EstimatedWaitMinutes: minutesCeil(s.est.nextArrival(len(queued), s.preparing, now)),
		QueueOrders:          listing,
		PreparingOrders:      preparing,
	}
}

// viewLocked projects a single order, deriving position and estimate from the
// scheduler's current ordering.
func (s *QueueService) viewLocked(o *order.Order) OrderView {
	now := s.now()
	switch o.Status {
	case order.StatusQueued:
		return s.annotated(o, s.queue.Position(o.ID), now)
	case order.StatusPreparing:
		return s.annotated(o, 0, now)
	default:
		return s.terminalView(o)
	}
}

// annotated builds the view for a live (queued or preparing) order. position
// is the 1-based rank for queued orders and 0 for the preparing order.
func (s *QueueService) annotated(o *order.Order, position int, now time.Time) OrderView {
	v := s.terminalView(o)
	v.PositionInQueue = position
	if o.Status == order.StatusPreparing {
		v.EstimatedWaitMinutes = minutesCeil(s.est.remaining(o, now))
	} else {
		v.EstimatedWaitMinutes = minutesCeil(s.est.estimate(position, s.preparing, now))
	}
	return v
}

// terminalView copies the stored fields without derived annotations.
func (s *QueueService) terminalView(o *order.Order) OrderView {
	c := o.Clone()
	return OrderView{
		ID:           c.ID,
		CustomerName: c.CustomerName,
		Items:        c.Items,
		Priority:     c.Priority,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		StartedAt:    c.StartedAt,
		FinishedAt:   c.FinishedAt,
	}
}

// eventLocked builds the change record for a committed mutation. The snapshot
// is taken inside the same critical section as the mutation.
func (s *QueueService) eventLocked(t EventType, o *order.Order) Event {
	return Event{
		Type:   t,
		Order:  *o.Clone(),
		Status: s.statusLocked(s.pageSize),
	}
}

// publish hands the event to the fan-out stage. Called while the caller still
// holds the write lock, so events enter the dispatcher in commit order;
// Publisher.Publish must not block. Delivery stays fire-and-forget relative to
// the mutation path.
func (s *QueueService) publish(ev Event) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ev)
}
