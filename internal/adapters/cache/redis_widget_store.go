package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/referral-rewards/internal/domain"
)

// RedisWidgetStore caches widget display configuration per campaign.
type RedisWidgetStore struct {
	client *redis.Client
}

func NewRedisWidgetStore(client *redis.Client) *RedisWidgetStore {
	return &RedisWidgetStore{client: client}
}

func (s *RedisWidgetStore) Get(ctx context.Context, campaignID string) (domain.WidgetConfig, bool, error) {
	raw, err := s.client.Get(ctx, "referral:widget:"+campaignID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.WidgetConfig{}, false, nil
		}
		return domain.WidgetConfig{}, false, err
	}
	var cfg domain.WidgetConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.WidgetConfig{}, false, err
	}
	return cfg, true, nil
}

func (s *RedisWidgetStore) Set(ctx context.Context, cfg domain.WidgetConfig, ttl time.Duration) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "referral:widget:"+cfg.CampaignID, raw, ttl).Err()
}
