package notify

import (
	"go.uber.org/zap"

	"github.com/brewline/queue-api/internal/service"
)

// Sink receives queue change events from the dispatcher. A failing sink is
// logged and skipped; it never affects the mutation that produced the event.
type Sink interface {
	Name() string
	Deliver(service.Event) error
}

// Dispatcher is the fan-out stage between the engine's critical section and
// delivery. Publish is non-blocking: events queue into a buffered channel and
// are dropped with a log line when the buffer is full, so a slow sink can
// never stall order processing.
type Dispatcher struct {
	ch     chan service.Event
	sinks  []Sink
	logger *zap.Logger
	done   chan struct{}
}

// NewDispatcher creates a dispatcher feeding the given sinks. Call Run in its
// own goroutine.
func NewDispatcher(logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		ch:     make(chan service.Event, 256),
		sinks:  sinks,
		logger: logger.Named("notify"),
		done:   make(chan struct{}),
	}
}

// Publish implements service.Publisher.
func (d *Dispatcher) Publish(ev service.Event) {
	select {
	case d.ch <- ev:
	default:
		d.logger.Warn("event buffer full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("order_id", ev.Order.ID.String()))
	}
}

// Run delivers events to every sink until Close is called.
func (d *Dispatcher) Run() {
	for ev := range d.ch {
		for _, s := range d.sinks {
			if err := s.Deliver(ev); err != nil {
				d.logger.Warn("sink delivery failed",
					zap.String("sink", s.Name()),
					zap.String("type", string(ev.Type)),
					zap.Error(err))
			}
		}
	}
	close(d.done)
}

// Close stops the dispatcher after draining buffered events.
func (d *Dispatcher) Close() {
	close(d.ch)
	<-d.done
}
