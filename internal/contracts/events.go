package contracts

// EventEnvelope is the canonical envelope written to the outbox and handed to
// the publisher. Payload carries the event-specific data object.
type EventEnvelope struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	OccurredAt string         `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}
