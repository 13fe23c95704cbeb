// Package queue defines the message payloads exchanged over RabbitMQ and the
// background consumer that records them.
package queue

// ChangedQueueName is the durable queue carrying ConnectionChangedEvent.
const ChangedQueueName = "connection.changed"

// ConnectionChangedEvent is published after every committed data change.  It
// carries enough of the affected connection for downstream consumers to log
// or alert without querying the monitor.
type ConnectionChangedEvent struct {
	Kind         string `json:"kind"`
	EntityID     string `json:"entity_id"`
	ConnectionID string `json:"connection_id,omitempty"`
	ClientName   string `json:"client_name,omitempty"`
	Address      string `json:"address,omitempty"`
	Status       string `json:"status,omitempty"`
	OccurredAt   string `json:"occurred_at"`
	Total        int    `json:"total_connections"`
}
