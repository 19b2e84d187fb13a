package domain

import "time"

const (
	RewardStatusPending   = "pending"
	RewardStatusFulfilled = "fulfilled"
)

type Campaign struct {
	CampaignID        string    `json:"campaign_id"`
	Name              string    `json:"name"`
	RewardDescription string    `json:"reward_description"`
	CreatedAt         time.Time `json:"created_at"`
}

// Referral is a referrer's participation record within a campaign. The code
// is assigned at creation and never changes afterwards.
type Referral struct {
	ReferralID    string    `json:"referral_id"`
	CampaignID    string    `json:"campaign_id"`
	ReferrerEmail string    `json:"referrer_email"`
	Code          string    `json:"code"`
	CreatedAt     time.Time `json:"created_at"`
}

type Reward struct {
	RewardID    string     `json:"reward_id"`
	ReferralID  string     `json:"referral_id"`
	ActionType  string     `json:"action_type"`
	RewardType  string     `json:"reward_type"`
	RewardValue float64    `json:"reward_value"`
	Status      string     `json:"status"`
	CouponCode  string     `json:"coupon_code,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	FulfilledAt *time.Time `json:"fulfilled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WidgetConfig is the display configuration handed to the embeddable widget.
type WidgetConfig struct {
	CampaignID        string `json:"campaign_id"`
	CampaignName      string `json:"campaign_name"`
	RewardDescription string `json:"reward_description"`
	PrimaryColor      string `json:"primary_color"`
	APIBaseURL        string `json:"api_base_url"`
}
