package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope every message published to Kafka is wrapped in.
// AggregateID doubles as the partition key so events for the same aggregate
// stay ordered.
type Event struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	AggregateID   string    `json:"aggregate_id"`
	AggregateType string    `json:"aggregate_type"`
	Timestamp     time.Time `json:"timestamp"`
	Version       int       `json:"version"`
	Payload       any       `json:"payload"`
}

// NewEvent builds an envelope with a fresh event ID and the current time.
func NewEvent(eventType, aggregateType, aggregateID string, payload any) Event {
	return Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Timestamp:     time.Now().UTC(),
		Version:       1,
		Payload:       payload,
	}
}
