// Package events contains the domain event publishers and the outbox worker.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/viralforge/referral-rewards/internal/ports"
)

// LoggingDomainPublisher emits domain events as structured log lines. It is
// the default publisher until a broker transport is attached downstream.
type LoggingDomainPublisher struct {
	logger *slog.Logger
}

func NewLoggingDomainPublisher(logger *slog.Logger) *LoggingDomainPublisher {
	return &LoggingDomainPublisher{logger: logger}
}

func (p *LoggingDomainPublisher) Publish(ctx context.Context, event ports.PublishedEvent) error {
	p.logger.InfoContext(ctx, "domain event published",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
		"partition_key_path", event.PartitionKeyPath,
		"occurred_at", event.OccurredAt,
	)
	return nil
}

// MemoryDomainPublisher records published events for inspection in tests.
type MemoryDomainPublisher struct {
	mu     sync.Mutex
	events []ports.PublishedEvent
}

func NewMemoryDomainPublisher() *MemoryDomainPublisher {
	return &MemoryDomainPublisher{}
}

func (p *MemoryDomainPublisher) Publish(_ context.Context, event ports.PublishedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryDomainPublisher) Events() []ports.PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
