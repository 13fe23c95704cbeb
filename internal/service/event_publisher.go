// Package service holds the store listeners that connect committed changes
// to the outside world: persistence, RabbitMQ events and cache invalidation.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/connection-monitor/internal/queue"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// BuildEvent turns a committed data change into its wire event.  Details of
// the affected connection are filled in when it still exists in snap.
func BuildEvent(change store.Change, snap store.Snapshot, at time.Time) queue.ConnectionChangedEvent {
	ev := queue.ConnectionChangedEvent{
		Kind:         string(change.Kind),
		EntityID:     change.ID,
		ConnectionID: change.ConnectionID,
		OccurredAt:   at.UTC().Format(time.RFC3339),
		Total:        len(snap.Connections),
	}
	if change.ConnectionID != "" {
		for _, c := range snap.Connections {
			if c.ID == change.ConnectionID {
				ev.ClientName = c.ClientName
				ev.Address = c.Address
				ev.Status = string(c.Status)
				break
			}
		}
	}
	if change.Kind == store.ChangeAddressAdded {
		for _, a := range snap.Addresses {
			if a.ID == change.ID {
				ev.Address = a.Label()
				break
			}
		}
	}
	return ev
}

// EventPublisher is a StateListener that publishes every data change to the
// durable connection.changed queue.  StateChanged only enqueues; Run owns the
// broker connection.  Publish failures are logged and never reach the store.
type EventPublisher struct {
	url    string
	events chan queue.ConnectionChangedEvent
	now    func() time.Time

	// publish sends one encoded event.  Nil means RabbitMQ.
	publish func(ctx context.Context, body []byte) error

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewEventPublisher buffers up to buffer events between the store and the
// broker.  Events arriving while the buffer is full are dropped.
func NewEventPublisher(url string, buffer int) *EventPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &EventPublisher{url: url, events: make(chan queue.ConnectionChangedEvent, buffer), now: time.Now}
}

func (p *EventPublisher) StateChanged(change store.Change, snap store.Snapshot) {
	if !change.Kind.IsData() {
		return
	}
	select {
	case p.events <- BuildEvent(change, snap, p.now()):
	default:
		log.Warnf("rabbitmq: event buffer full, dropping %s %s", change.Kind, change.ID)
	}
}

// Run publishes queued events until ctx is done.  A failed publish is retried
// once on a fresh connection, then dropped.
func (p *EventPublisher) Run(ctx context.Context) {
	defer p.close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			body, err := json.Marshal(ev)
			if err != nil {
				log.Errorf("rabbitmq: marshal event failed: %v", err)
				continue
			}
			if err := p.send(ctx, body); err != nil {
				p.close()
				if err := p.send(ctx, body); err != nil {
					log.Errorf("rabbitmq: publish %s failed: %v", ev.Kind, err)
					p.close()
				}
			}
		}
	}
}

func (p *EventPublisher) send(ctx context.Context, body []byte) error {
	if p.publish != nil {
		return p.publish(ctx, body)
	}
	if p.ch == nil {
		if err := p.dial(); err != nil {
			return err
		}
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.ch.PublishWithContext(pctx,
		"",                     // default exchange
		queue.ChangedQueueName, // routing key = queue name
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

func (p *EventPublisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(queue.ChangedQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *EventPublisher) close() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
