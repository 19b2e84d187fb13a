package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/referral-rewards/internal/domain"
)

func (s *Service) CreateCampaign(ctx context.Context, in CreateCampaignInput) (domain.Campaign, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.RewardDescription = strings.TrimSpace(in.RewardDescription)
	if in.Name == "" || in.RewardDescription == "" {
		return domain.Campaign{}, domain.ErrInvalidInput
	}
	row := domain.Campaign{
		CampaignID:        "cmp_" + uuid.NewString(),
		Name:              in.Name,
		RewardDescription: in.RewardDescription,
		CreatedAt:         s.nowFn(),
	}
	if err := s.campaigns.Create(ctx, row); err != nil {
		return domain.Campaign{}, err
	}
	_ = s.enqueueEvent(ctx, domain.EventCampaignCreated, row.CampaignID, map[string]any{
		"campaign_id": row.CampaignID,
		"name":        row.Name,
	})
	return row, nil
}

func (s *Service) GetCampaign(ctx context.Context, campaignID string) (domain.Campaign, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return domain.Campaign{}, domain.ErrInvalidInput
	}
	return s.campaigns.GetByID(ctx, campaignID)
}

func (s *Service) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	return s.campaigns.List(ctx)
}

// GetWidgetConfig resolves display configuration for the embeddable widget,
// read-through cached because widgets fetch it on every page load.
func (s *Service) GetWidgetConfig(ctx context.Context, campaignID string) (domain.WidgetConfig, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return domain.WidgetConfig{}, domain.ErrInvalidInput
	}
	if s.widgetCache != nil {
		if cfg, ok, err := s.widgetCache.Get(ctx, campaignID); err == nil && ok {
			return cfg, nil
		}
	}
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return domain.WidgetConfig{}, err
	}
	cfg := domain.WidgetConfig{
		CampaignID:        campaign.CampaignID,
		CampaignName:      campaign.Name,
		RewardDescription: campaign.RewardDescription,
		PrimaryColor:      s.cfg.WidgetPrimaryColor,
		APIBaseURL:        s.cfg.PublicBaseURL,
	}
	if s.widgetCache != nil {
		_ = s.widgetCache.Set(ctx, cfg, s.cfg.WidgetCacheTTL)
	}
	return cfg, nil
}
