package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/referral-rewards/internal/domain"
)

func (s *Service) CreateReward(ctx context.Context, in CreateRewardInput) (domain.Reward, error) {
	in.ReferralID = strings.TrimSpace(in.ReferralID)
	in.ActionType = strings.TrimSpace(in.ActionType)
	in.RewardType = strings.ToLower(strings.TrimSpace(in.RewardType))
	if in.ReferralID == "" || in.ActionType == "" || in.RewardValue <= 0 {
		return domain.Reward{}, domain.ErrInvalidInput
	}
	if in.RewardType == "" {
		in.RewardType = "credit"
	}
	referral, err := s.referrals.GetByID(ctx, in.ReferralID)
	if err != nil {
		return domain.Reward{}, err
	}

	now := s.nowFn()
	row := domain.Reward{
		RewardID:    "rwd_" + uuid.NewString(),
		ReferralID:  referral.ReferralID,
		ActionType:  in.ActionType,
		RewardType:  in.RewardType,
		RewardValue: in.RewardValue,
		Status:      domain.RewardStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.rewards.Create(ctx, row); err != nil {
		return domain.Reward{}, err
	}
	_ = s.enqueueEvent(ctx, domain.EventRewardCreated, row.ReferralID, map[string]any{
		"reward_id":    row.RewardID,
		"referral_id":  row.ReferralID,
		"action_type":  row.ActionType,
		"reward_value": row.RewardValue,
	})
	return row, nil
}

func (s *Service) ListRewardsByReferral(ctx context.Context, referralID string) ([]domain.Reward, error) {
	referralID = strings.TrimSpace(referralID)
	if referralID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.referrals.GetByID(ctx, referralID); err != nil {
		return nil, err
	}
	return s.rewards.ListByReferralID(ctx, referralID)
}

// FulfillReward transitions a reward from pending to fulfilled, attaching the
// coupon details. Fulfillment is strict: a reward that has already been
// fulfilled is not fulfilled again, the call fails with ErrAlreadyFulfilled.
func (s *Service) FulfillReward(ctx context.Context, in FulfillRewardInput) (domain.Reward, error) {
	in.RewardID = strings.TrimSpace(in.RewardID)
	in.CouponCode = strings.TrimSpace(in.CouponCode)
	if in.RewardID == "" || in.CouponCode == "" {
		return domain.Reward{}, domain.ErrInvalidInput
	}
	row, err := s.rewards.MarkFulfilled(ctx, in.RewardID, in.CouponCode, in.ExpiresAt, s.nowFn())
	if err != nil {
		return domain.Reward{}, err
	}
	_ = s.enqueueEvent(ctx, domain.EventRewardFulfilled, row.ReferralID, map[string]any{
		"reward_id":   row.RewardID,
		"referral_id": row.ReferralID,
		"coupon_code": row.CouponCode,
	})
	return row, nil
}

func newEventID() string { return "evt_" + uuid.NewString() }
