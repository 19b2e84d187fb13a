package application

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/referral-rewards/internal/domain"
)

// TrackAction materializes a verified webhook action event into exactly one
// pending reward. The caller guarantees the request signature was already
// checked; this method never sees unverified input.
//
// Deliveries carrying an idempotency key are deduplicated: a retry with the
// same key and payload returns the originally created reward.
func (s *Service) TrackAction(ctx context.Context, in TrackActionInput) (TrackActionResult, error) {
	in.ReferralCode = strings.TrimSpace(in.ReferralCode)
	in.ActionType = strings.TrimSpace(in.ActionType)
	if in.ReferralCode == "" || in.ActionType == "" {
		return TrackActionResult{}, domain.ErrInvalidInput
	}
	value, err := rewardValueFromMetadata(in.Metadata)
	if err != nil {
		return TrackActionResult{}, err
	}

	requestHash := hashJSON(map[string]any{
		"op":       "track_action",
		"code":     in.ReferralCode,
		"action":   in.ActionType,
		"metadata": in.Metadata,
	})
	if raw, ok, err := s.getIdempotent(ctx, in.IdempotencyKey, requestHash); err != nil {
		return TrackActionResult{}, err
	} else if ok {
		var out TrackActionResult
		if json.Unmarshal(raw, &out) == nil {
			return out, nil
		}
	}

	referral, err := s.referrals.GetByCode(ctx, in.ReferralCode)
	if err != nil {
		return TrackActionResult{}, err
	}

	rewardType := "credit"
	if v, ok := in.Metadata["reward_type"].(string); ok && strings.TrimSpace(v) != "" {
		rewardType = strings.ToLower(strings.TrimSpace(v))
	}
	now := s.nowFn()
	row := domain.Reward{
		RewardID:    "rwd_" + uuid.NewString(),
		ReferralID:  referral.ReferralID,
		ActionType:  in.ActionType,
		RewardType:  rewardType,
		RewardValue: value,
		Status:      domain.RewardStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.rewards.Create(ctx, row); err != nil {
		return TrackActionResult{}, err
	}
	_ = s.enqueueEvent(ctx, domain.EventRewardCreated, row.ReferralID, map[string]any{
		"reward_id":    row.RewardID,
		"referral_id":  row.ReferralID,
		"campaign_id":  referral.CampaignID,
		"action_type":  row.ActionType,
		"reward_value": row.RewardValue,
	})

	out := TrackActionResult{ReferralCode: referral.Code, ActionType: row.ActionType, Reward: row}
	_ = s.completeIdempotent(ctx, in.IdempotencyKey, requestHash, out)
	return out, nil
}

// rewardValueFromMetadata extracts the required numeric reward value. A
// missing or non-positive value rejects the event rather than materializing a
// zero-value reward.
func rewardValueFromMetadata(metadata map[string]any) (float64, error) {
	raw, ok := metadata["reward_value"]
	if !ok {
		return 0, domain.ErrInvalidInput
	}
	switch v := raw.(type) {
	case float64:
		if v <= 0 {
			return 0, domain.ErrInvalidInput
		}
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil || f <= 0 {
			return 0, domain.ErrInvalidInput
		}
		return f, nil
	default:
		return 0, domain.ErrInvalidInput
	}
}
