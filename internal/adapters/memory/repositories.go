// Package memory provides mutex guarded in-memory implementations of the
// storage ports. It is the default driver for local development and the
// fixture the test suites run against.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
	"github.com/viralforge/referral-rewards/internal/ports"
)

type Repositories struct {
	Campaigns   *CampaignRepository
	Referrals   *ReferralRepository
	Rewards     *RewardRepository
	Idempotency *IdempotencyRepository
	Outbox      *OutboxRepository
}

func NewRepositories() Repositories {
	return Repositories{
		Campaigns:   &CampaignRepository{rows: map[string]domain.Campaign{}},
		Referrals:   &ReferralRepository{rows: map[string]domain.Referral{}, byCode: map[string]string{}},
		Rewards:     &RewardRepository{rows: map[string]domain.Reward{}},
		Idempotency: &IdempotencyRepository{rows: map[string]ports.IdempotencyRecord{}},
		Outbox:      &OutboxRepository{},
	}
}

type CampaignRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Campaign
}

func (r *CampaignRepository) Create(_ context.Context, row domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.CampaignID]; ok {
		return domain.ErrConflict
	}
	r.rows[row.CampaignID] = row
	return nil
}

func (r *CampaignRepository) GetByID(_ context.Context, campaignID string) (domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[campaignID]
	if !ok {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *CampaignRepository) List(_ context.Context) ([]domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Campaign, 0, len(r.rows))
	for _, row := range r.rows {
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type ReferralRepository struct {
	mu     sync.RWMutex
	rows   map[string]domain.Referral
	byCode map[string]string
}

func (r *ReferralRepository) Create(_ context.Context, row domain.Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ReferralID]; ok {
		return domain.ErrConflict
	}
	if _, ok := r.byCode[row.Code]; ok {
		return domain.ErrConflict
	}
	r.rows[row.ReferralID] = row
	r.byCode[row.Code] = row.ReferralID
	return nil
}

func (r *ReferralRepository) GetByID(_ context.Context, referralID string) (domain.Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[referralID]
	if !ok {
		return domain.Referral{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *ReferralRepository) GetByCode(_ context.Context, code string) (domain.Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return domain.Referral{}, domain.ErrNotFound
	}
	return r.rows[id], nil
}

func (r *ReferralRepository) ListByCampaignID(_ context.Context, campaignID string) ([]domain.Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Referral
	for _, row := range r.rows {
		if row.CampaignID == campaignID {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type RewardRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Reward
}

func (r *RewardRepository) Create(_ context.Context, row domain.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.RewardID]; ok {
		return domain.ErrConflict
	}
	r.rows[row.RewardID] = row
	return nil
}

func (r *RewardRepository) GetByID(_ context.Context, rewardID string) (domain.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[rewardID]
	if !ok {
		return domain.Reward{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *RewardRepository) ListByReferralID(_ context.Context, referralID string) ([]domain.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Reward
	for _, row := range r.rows {
		if row.ReferralID == referralID {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkFulfilled checks and flips the status under one lock acquisition so the
// pending guard and the write cannot interleave with another caller.
func (r *RewardRepository) MarkFulfilled(_ context.Context, rewardID, couponCode string, expiresAt *time.Time, at time.Time) (domain.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[rewardID]
	if !ok {
		return domain.Reward{}, domain.ErrNotFound
	}
	if row.Status != domain.RewardStatusPending {
		return domain.Reward{}, domain.ErrAlreadyFulfilled
	}
	fulfilled := at
	row.Status = domain.RewardStatusFulfilled
	row.CouponCode = couponCode
	row.ExpiresAt = expiresAt
	row.FulfilledAt = &fulfilled
	row.UpdatedAt = at
	r.rows[rewardID] = row
	return row, nil
}

type IdempotencyRepository struct {
	mu   sync.Mutex
	rows map[string]ports.IdempotencyRecord
}

func (r *IdempotencyRepository) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	if !rec.ExpiresAt.After(now) {
		delete(r.rows, key)
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (r *IdempotencyRepository) Put(_ context.Context, rec ports.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[rec.Key]; ok {
		return nil
	}
	r.rows[rec.Key] = rec
	return nil
}

type OutboxRepository struct {
	mu   sync.Mutex
	rows []ports.OutboxRecord
}

func (r *OutboxRepository) Enqueue(_ context.Context, rec ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rec)
	return nil
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []ports.OutboxRecord
	for _, rec := range r.rows {
		if rec.SentAt != nil {
			continue
		}
		result = append(result, rec)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].RecordID == recordID {
			sent := at
			r.rows[i].SentAt = &sent
			return nil
		}
	}
	return domain.ErrNotFound
}
