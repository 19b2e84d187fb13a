package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/referral-rewards/internal/domain"
)

// codeIssueAttempts bounds retries when a freshly generated code collides
// with an existing one. With an 8-char code over 36 symbols a collision is
// already vanishingly rare; three attempts keeps the loop finite.
const codeIssueAttempts = 3

func (s *Service) CreateReferral(ctx context.Context, in CreateReferralInput) (domain.Referral, error) {
	in.CampaignID = strings.TrimSpace(in.CampaignID)
	in.ReferrerEmail = strings.TrimSpace(strings.ToLower(in.ReferrerEmail))
	if in.CampaignID == "" || in.ReferrerEmail == "" || !strings.Contains(in.ReferrerEmail, "@") {
		return domain.Referral{}, domain.ErrInvalidInput
	}
	campaign, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		return domain.Referral{}, err
	}

	var lastErr error
	for attempt := 0; attempt < codeIssueAttempts; attempt++ {
		code, err := newReferralCode(s.cfg.ReferralCodeLength)
		if err != nil {
			return domain.Referral{}, err
		}
		row := domain.Referral{
			ReferralID:    "ref_" + uuid.NewString(),
			CampaignID:    campaign.CampaignID,
			ReferrerEmail: in.ReferrerEmail,
			Code:          code,
			CreatedAt:     s.nowFn(),
		}
		if err := s.referrals.Create(ctx, row); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				lastErr = err
				continue
			}
			return domain.Referral{}, err
		}
		_ = s.enqueueEvent(ctx, domain.EventReferralCreated, row.ReferralID, map[string]any{
			"referral_id": row.ReferralID,
			"campaign_id": row.CampaignID,
			"code":        row.Code,
		})
		return row, nil
	}
	return domain.Referral{}, lastErr
}

func (s *Service) GetReferralByCode(ctx context.Context, code string) (domain.Referral, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Referral{}, domain.ErrInvalidInput
	}
	return s.referrals.GetByCode(ctx, code)
}

func (s *Service) ListReferralsByCampaign(ctx context.Context, campaignID string) ([]domain.Referral, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.referrals.ListByCampaignID(ctx, campaignID)
}
