package ports

import (
	"context"
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
)

type CampaignRepository interface {
	Create(ctx context.Context, row domain.Campaign) error
	GetByID(ctx context.Context, campaignID string) (domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, row domain.Referral) error
	GetByID(ctx context.Context, referralID string) (domain.Referral, error)
	GetByCode(ctx context.Context, code string) (domain.Referral, error)
	ListByCampaignID(ctx context.Context, campaignID string) ([]domain.Referral, error)
}

type RewardRepository interface {
	Create(ctx context.Context, row domain.Reward) error
	GetByID(ctx context.Context, rewardID string) (domain.Reward, error)
	ListByReferralID(ctx context.Context, referralID string) ([]domain.Reward, error)
	// MarkFulfilled performs the pending -> fulfilled transition as one
	// conditional store operation. Implementations must not split it into a
	// read followed by a write; concurrent callers for the same reward must
	// resolve to exactly one winner. Returns ErrNotFound for an unknown
	// reward and ErrAlreadyFulfilled when the transition already happened.
	MarkFulfilled(ctx context.Context, rewardID, couponCode string, expiresAt *time.Time, at time.Time) (domain.Reward, error)
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Put(ctx context.Context, rec IdempotencyRecord) error
}

type OutboxRecord struct {
	RecordID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
	SentAt       *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, rec OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
