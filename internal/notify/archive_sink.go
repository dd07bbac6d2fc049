package notify

import (
	"context"
	"time"

	"github.com/brewline/queue-api/internal/order"
	"github.com/brewline/queue-api/internal/service"
)

const recordTimeout = 5 * time.Second

// OrderRecorder persists terminal orders. Satisfied by *archive.Recorder.
type OrderRecorder interface {
	Record(ctx context.Context, o order.Order) error
}

// ArchiveSink forwards completed and cancelled orders to durable history.
// Non-terminal events pass through untouched.
type ArchiveSink struct {
	rec OrderRecorder
}

// NewArchiveSink creates a sink over the given recorder.
func NewArchiveSink(rec OrderRecorder) *ArchiveSink {
	return &ArchiveSink{rec: rec}
}

// Name implements Sink.
func (s *ArchiveSink) Name() string { return "archive" }

// Deliver implements Sink.
func (s *ArchiveSink) Deliver(ev service.Event) error {
	if ev.Type != service.EventOrderCompleted && ev.Type != service.EventOrderCancelled {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	return s.rec.Record(ctx, ev.Order)
}
