package application

import (
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
)

type Config struct {
	ServiceName          string
	PublicBaseURL        string
	WidgetPrimaryColor   string
	WidgetCacheTTL       time.Duration
	IdempotencyTTL       time.Duration
	OutboxFlushBatchSize int
	ReferralCodeLength   int
}

type CreateCampaignInput struct {
	Name              string
	RewardDescription string
}

type CreateReferralInput struct {
	CampaignID    string
	ReferrerEmail string
}

type CreateRewardInput struct {
	ReferralID  string
	ActionType  string
	RewardType  string
	RewardValue float64
}

// TrackActionInput is a webhook action event whose signature has already been
// verified by the transport layer.
type TrackActionInput struct {
	ReferralCode   string
	ActionType     string
	Metadata       map[string]any
	IdempotencyKey string
}

type TrackActionResult struct {
	ReferralCode string        `json:"referral_code"`
	ActionType   string        `json:"action_type"`
	Reward       domain.Reward `json:"reward"`
}

type FulfillRewardInput struct {
	RewardID   string
	CouponCode string
	ExpiresAt  *time.Time
}
