package ports

import (
	"context"
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
)

// WidgetConfigCache is a read-through cache for widget display configuration.
// A miss is (zero value, false, nil); cache errors are reported but callers
// treat them as misses.
type WidgetConfigCache interface {
	Get(ctx context.Context, campaignID string) (domain.WidgetConfig, bool, error)
	Set(ctx context.Context, cfg domain.WidgetConfig, ttl time.Duration) error
}
