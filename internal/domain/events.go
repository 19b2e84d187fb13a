package domain

const (
	EventCampaignCreated = "referral.campaign.created"
	EventReferralCreated = "referral.code.created"
	EventRewardCreated   = "referral.reward.created"
	EventRewardFulfilled = "referral.reward.fulfilled"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventCampaignCreated, EventReferralCreated, EventRewardCreated, EventRewardFulfilled:
		return true
	default:
		return false
	}
}

// CanonicalPartitionKeyPath names the payload field consumers partition on.
func CanonicalPartitionKeyPath(eventType string) string {
	switch eventType {
	case EventCampaignCreated:
		return "data.campaign_id"
	case EventReferralCreated, EventRewardCreated, EventRewardFulfilled:
		return "data.referral_id"
	default:
		return ""
	}
}
