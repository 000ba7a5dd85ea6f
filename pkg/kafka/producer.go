package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer publishes events to a single Kafka topic.
type Producer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewProducer creates a producer for the given topic.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Compression:  kafkago.Snappy,
	}

	return &Producer{writer: writer, logger: logger}
}

// Publish serializes the event and writes it keyed by aggregate ID.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventType, err)
	}

	if p.logger != nil {
		p.logger.Debug("published event",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.String("aggregate_id", event.AggregateID),
		)
	}
	return nil
}

// Ping dials the first reachable broker to verify connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, brokerAddrs(p.writer.Addr))
}

// PingBrokers checks that at least one broker accepts a connection.
func PingBrokers(ctx context.Context, brokers []string) error {
	var lastErr error
	for _, broker := range brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func brokerAddrs(addr net.Addr) []string {
	if addr == nil {
		return nil
	}
	return []string{addr.String()}
}
