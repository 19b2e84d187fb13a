package ports

import (
	"context"
	"time"
)

type PublishedEvent struct {
	EventID          string
	EventType        string
	PartitionKey     string
	PartitionKeyPath string
	Payload          []byte
	OccurredAt       time.Time
}

type DomainEventPublisher interface {
	Publish(ctx context.Context, event PublishedEvent) error
}
