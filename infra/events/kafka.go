package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	protocols "github.com/Noop27/lesson-store/protocols"
)

const (
	typeOrderPlaced    = "order.placed"
	typeInventoryDrift = "inventory.drift"
)

// KafkaPublisher writes operator events to a single topic, typed by a
// message header. Configured only when brokers are set; otherwise the
// server wires NopPublisher.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, event protocols.OrderPlacedEvent) error {
	return p.publish(ctx, typeOrderPlaced, event.OrderID, event)
}

func (p *KafkaPublisher) InventoryDrift(ctx context.Context, event protocols.InventoryDriftEvent) error {
	return p.publish(ctx, typeInventoryDrift, event.OrderID, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(eventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (NopPublisher) OrderPlaced(ctx context.Context, event protocols.OrderPlacedEvent) error {
	return nil
}

func (NopPublisher) InventoryDrift(ctx context.Context, event protocols.InventoryDriftEvent) error {
	return nil
}
