package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/viralforge/referral-rewards/internal/contracts"
	"github.com/viralforge/referral-rewards/internal/domain"
	"github.com/viralforge/referral-rewards/internal/ports"
)

// enqueueEvent writes a canonical event envelope to the outbox. Event
// delivery is best effort relative to the triggering write: callers ignore
// the error so a full outbox never fails the user-facing operation.
func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey string, data map[string]any) error {
	if s.outbox == nil || !domain.IsCanonicalEmittedEvent(eventType) {
		return nil
	}
	now := s.nowFn()
	eventID := newEventID()
	payload, err := json.Marshal(contracts.EventEnvelope{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: now.Format(time.RFC3339Nano),
		Data:       data,
	})
	if err != nil {
		return err
	}
	return s.outbox.Enqueue(ctx, ports.OutboxRecord{
		RecordID:     eventID,
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		CreatedAt:    now,
	})
}

// FlushOutbox publishes pending outbox records in enqueue order. Records that
// fail to publish stay pending and are retried on the next flush.
func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil || s.events == nil {
		return nil
	}
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		event := ports.PublishedEvent{
			EventID:          rec.RecordID,
			EventType:        rec.EventType,
			PartitionKey:     rec.PartitionKey,
			PartitionKeyPath: domain.CanonicalPartitionKeyPath(rec.EventType),
			Payload:          rec.Payload,
			OccurredAt:       rec.CreatedAt,
		}
		if err := s.events.Publish(ctx, event); err != nil {
			return err
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, s.nowFn()); err != nil {
			return err
		}
	}
	return nil
}
