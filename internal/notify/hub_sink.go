package notify

import (
	"encoding/json"
	"fmt"

	"github.com/brewline/queue-api/internal/service"
	"github.com/brewline/queue-api/internal/ws"
)

// queueUpdatedType is the single event type the UI listens for; every
// mutation broadcasts a fresh snapshot under it.
const queueUpdatedType = "queue_updated"

// HubSink broadcasts queue snapshots to all connected WebSocket clients.
type HubSink struct {
	hub *ws.Hub
}

// NewHubSink creates a sink over the given hub.
func NewHubSink(hub *ws.Hub) *HubSink {
	return &HubSink{hub: hub}
}

// Name implements Sink.
func (s *HubSink) Name() string { return "websocket" }

// Deliver implements Sink.
func (s *HubSink) Deliver(ev service.Event) error {
	payload, err := json.Marshal(ev.Status)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	s.hub.Broadcast(ws.Event{Type: queueUpdatedType, Payload: payload})
	return nil
}
