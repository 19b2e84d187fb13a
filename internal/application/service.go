package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
	"github.com/viralforge/referral-rewards/internal/ports"
)

type Service struct {
	cfg         Config
	campaigns   ports.CampaignRepository
	referrals   ports.ReferralRepository
	rewards     ports.RewardRepository
	idempotency ports.IdempotencyRepository
	outbox      ports.OutboxRepository
	widgetCache ports.WidgetConfigCache
	events      ports.DomainEventPublisher
	nowFn       func() time.Time
}

type Dependencies struct {
	Config       Config
	Campaigns    ports.CampaignRepository
	Referrals    ports.ReferralRepository
	Rewards      ports.RewardRepository
	Idempotency  ports.IdempotencyRepository
	Outbox       ports.OutboxRepository
	WidgetCache  ports.WidgetConfigCache
	DomainEvents ports.DomainEventPublisher
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		cfg:         deps.Config,
		campaigns:   deps.Campaigns,
		referrals:   deps.Referrals,
		rewards:     deps.Rewards,
		idempotency: deps.Idempotency,
		outbox:      deps.Outbox,
		widgetCache: deps.WidgetCache,
		events:      deps.DomainEvents,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
	if s.cfg.IdempotencyTTL == 0 {
		s.cfg.IdempotencyTTL = 24 * time.Hour
	}
	if s.cfg.WidgetCacheTTL == 0 {
		s.cfg.WidgetCacheTTL = 5 * time.Minute
	}
	if s.cfg.OutboxFlushBatchSize == 0 {
		s.cfg.OutboxFlushBatchSize = 100
	}
	if s.cfg.ReferralCodeLength == 0 {
		s.cfg.ReferralCodeLength = 8
	}
	if s.cfg.WidgetPrimaryColor == "" {
		s.cfg.WidgetPrimaryColor = "#6366f1"
	}
	return s
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newReferralCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

func hashJSON(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (s *Service) getIdempotent(ctx context.Context, key, requestHash string) ([]byte, bool, error) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil, false, nil
	}
	rec, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil {
		return nil, false, err
	}
	if rec.RequestHash != requestHash {
		return nil, false, domain.ErrIdempotencyConflict
	}
	return rec.ResponseBody, true, nil
}

func (s *Service) completeIdempotent(ctx context.Context, key, requestHash string, payload any) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	raw, _ := json.Marshal(payload)
	now := s.nowFn()
	return s.idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:          key,
		RequestHash:  requestHash,
		ResponseBody: raw,
		ExpiresAt:    now.Add(s.cfg.IdempotencyTTL),
		CreatedAt:    now,
	})
}
