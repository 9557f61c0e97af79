// Package kafkaoutbox publishes notification requests to the mail outbox
// topic. The mail collaborator consumes the topic, renders the template,
// and performs SMTP delivery.
package kafkaoutbox

import (
	"context"
	"encoding/json"
	"fmt"

	"comptrack/internal/notify"
)

// Producer is the subset of the kafka platform client the outbox needs.
type Producer interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Outbox is a notify.Dispatcher backed by a Kafka topic. Keying by
// recipient keeps one mailbox's messages in order.
type Outbox struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) *Outbox {
	return &Outbox{producer: producer, topic: topic}
}

func (o *Outbox) Send(ctx context.Context, msg notify.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return o.producer.Publish(ctx, o.topic, msg.To, payload)
}
