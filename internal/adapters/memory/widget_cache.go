package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
)

type widgetEntry struct {
	cfg       domain.WidgetConfig
	expiresAt time.Time
}

// WidgetConfigCache is the process-local fallback used when no Redis URL is
// configured.
type WidgetConfigCache struct {
	mu    sync.Mutex
	rows  map[string]widgetEntry
	nowFn func() time.Time
}

func NewWidgetConfigCache() *WidgetConfigCache {
	return &WidgetConfigCache{rows: map[string]widgetEntry{}, nowFn: time.Now}
}

func (c *WidgetConfigCache) Get(_ context.Context, campaignID string) (domain.WidgetConfig, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.rows[campaignID]
	if !ok {
		return domain.WidgetConfig{}, false, nil
	}
	if !entry.expiresAt.After(c.nowFn()) {
		delete(c.rows, campaignID)
		return domain.WidgetConfig{}, false, nil
	}
	return entry.cfg, true, nil
}

func (c *WidgetConfigCache) Set(_ context.Context, cfg domain.WidgetConfig, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[cfg.CampaignID] = widgetEntry{cfg: cfg, expiresAt: c.nowFn().Add(ttl)}
	return nil
}
