package contracts

import "encoding/json"

type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type CreateCampaignRequest struct {
	Name              string `json:"name"`
	RewardDescription string `json:"reward_description"`
}

type CampaignResponse struct {
	CampaignID        string `json:"campaign_id"`
	Name              string `json:"name"`
	RewardDescription string `json:"reward_description"`
	CreatedAt         string `json:"created_at"`
}

type CampaignListResponse struct {
	Items []CampaignResponse `json:"items"`
}

type CreateReferralRequest struct {
	CampaignID    string `json:"campaign_id"`
	ReferrerEmail string `json:"referrer_email"`
}

type ReferralResponse struct {
	ReferralID    string `json:"referral_id"`
	CampaignID    string `json:"campaign_id"`
	ReferrerEmail string `json:"referrer_email"`
	Code          string `json:"code"`
	CreatedAt     string `json:"created_at"`
}

type ReferralListResponse struct {
	Items []ReferralResponse `json:"items"`
}

type CreateRewardRequest struct {
	ReferralID  string  `json:"referral_id"`
	ActionType  string  `json:"action_type"`
	RewardType  string  `json:"reward_type,omitempty"`
	RewardValue float64 `json:"reward_value"`
}

type RewardResponse struct {
	RewardID    string  `json:"reward_id"`
	ReferralID  string  `json:"referral_id"`
	ActionType  string  `json:"action_type"`
	RewardType  string  `json:"reward_type"`
	RewardValue float64 `json:"reward_value"`
	Status      string  `json:"status"`
	CouponCode  string  `json:"coupon_code,omitempty"`
	ExpiresAt   string  `json:"expires_at,omitempty"`
	FulfilledAt string  `json:"fulfilled_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type RewardListResponse struct {
	Items []RewardResponse `json:"items"`
}

type FulfillRewardRequest struct {
	CouponCode string `json:"coupon_code"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

// TrackActionRequest mirrors the webhook body. The raw bytes are verified
// before this structure is ever decoded.
type TrackActionRequest struct {
	ReferralCode string          `json:"referral_code"`
	ActionType   string          `json:"action_type"`
	Metadata     json.RawMessage `json:"metadata"`
}

type TrackActionResponse struct {
	Status       string `json:"status"`
	ReferralCode string `json:"referral_code"`
	ActionType   string `json:"action_type"`
	RewardID     string `json:"reward_id"`
	RewardStatus string `json:"reward_status"`
}

type WidgetConfigResponse struct {
	CampaignID        string `json:"campaign_id"`
	CampaignName      string `json:"campaign_name"`
	RewardDescription string `json:"reward_description"`
	PrimaryColor      string `json:"primary_color"`
	APIBaseURL        string `json:"api_base_url"`
}
