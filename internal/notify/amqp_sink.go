package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/brewline/queue-api/internal/service"
)

// updatesExchange is the durable fanout exchange external consumers (kitchen
// displays, signage) bind to.
const updatesExchange = "queue.updates"

// amqpMessage is the wire shape published per event.
type amqpMessage struct {
	Type  service.EventType   `json:"type"`
	Order service.OrderView   `json:"order"`
	State service.QueueStatus `json:"state"`
}

// AMQPSink publishes queue change events to a RabbitMQ fanout exchange.
type AMQPSink struct {
	conn *amqp.Connection
}

// DialAMQP connects to the broker and declares the updates exchange.
func DialAMQP(url string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(updatesExchange, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPSink{conn: conn}, nil
}

// Name implements Sink.
func (s *AMQPSink) Name() string { return "amqp" }

// Deliver implements Sink.
func (s *AMQPSink) Deliver(ev service.Event) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(amqpMessage{
		Type: ev.Type,
		Order: service.OrderView{
			ID:           ev.Order.ID,
			CustomerName: ev.Order.CustomerName,
			Items:        ev.Order.Items,
			Priority:     ev.Order.Priority,
			Status:       ev.Order.Status,
			CreatedAt:    ev.Order.CreatedAt,
			StartedAt:    ev.Order.StartedAt,
			FinishedAt:   ev.Order.FinishedAt,
		},
		State: ev.Status,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = ch.PublishWithContext(context.Background(), updatesExchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close closes the broker connection.
func (s *AMQPSink) Close() error {
	return s.conn.Close()
}
