package postgres

import "time"

type campaignModel struct {
	CampaignID        string    `gorm:"column:campaign_id;primaryKey"`
	Name              string    `gorm:"column:name"`
	RewardDescription string    `gorm:"column:reward_description"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (campaignModel) TableName() string { return "campaigns" }

type referralModel struct {
	ReferralID    string    `gorm:"column:referral_id;primaryKey"`
	CampaignID    string    `gorm:"column:campaign_id"`
	ReferrerEmail string    `gorm:"column:referrer_email"`
	Code          string    `gorm:"column:code"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (referralModel) TableName() string { return "referrals" }

type rewardModel struct {
	RewardID    string     `gorm:"column:reward_id;primaryKey"`
	ReferralID  string     `gorm:"column:referral_id"`
	ActionType  string     `gorm:"column:action_type"`
	RewardType  string     `gorm:"column:reward_type"`
	RewardValue float64    `gorm:"column:reward_value"`
	Status      string     `gorm:"column:status"`
	CouponCode  *string    `gorm:"column:coupon_code"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	FulfilledAt *time.Time `gorm:"column:fulfilled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (rewardModel) TableName() string { return "rewards" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	ResponseBody   *string   `gorm:"column:response_body;type:jsonb"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (idempotencyModel) TableName() string { return "webhook_idempotency" }

type outboxModel struct {
	RecordID     string     `gorm:"column:record_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload;type:jsonb"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "referral_outbox" }
