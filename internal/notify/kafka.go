package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes confirmations as JSON keyed by order id, so every
// message of one order lands on the same partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (s *KafkaSink) Send(ctx context.Context, c Confirmation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(c.OrderID), Value: data, Time: time.Now().UTC()})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
