package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes events as JSON to a sync queue and an email queue.
// An empty queue URL disables publishing to that queue.
type Producer struct {
	sender        MessageSender
	syncQueueURL  string
	emailQueueURL string
}

func NewProducer(sender MessageSender, syncQueueURL, emailQueueURL string) *Producer {
	return &Producer{
		sender:        sender,
		syncQueueURL:  syncQueueURL,
		emailQueueURL: emailQueueURL,
	}
}

func NewSQSProducer(client SQSClient, syncQueueURL, emailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, syncQueueURL, emailQueueURL)
}

func (p *Producer) PublishSync(ctx context.Context, event CheckOutEvent) error {
	return p.publish(ctx, p.syncQueueURL, event.UserID, event)
}

func (p *Producer) PublishEmail(ctx context.Context, event EmailEvent) error {
	return p.publish(ctx, p.emailQueueURL, event.UserID, event)
}

func (p *Producer) publish(ctx context.Context, destination, userID string, body any) error {
	if destination == "" {
		return nil
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() && userID != "" {
		span.SetAttributes(attribute.String("app.userId", userID))
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// NopPublisher drops events. It is used when no queue is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSync(context.Context, CheckOutEvent) error { return nil }

func (NopPublisher) PublishEmail(context.Context, EmailEvent) error { return nil }
