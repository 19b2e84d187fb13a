package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/viralforge/referral-rewards/internal/domain"
	"github.com/viralforge/referral-rewards/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Campaigns   ports.CampaignRepository
	Referrals   ports.ReferralRepository
	Rewards     ports.RewardRepository
	Idempotency ports.IdempotencyRepository
	Outbox      ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Campaigns:   &campaignRepository{db: db},
		Referrals:   &referralRepository{db: db},
		Rewards:     &rewardRepository{db: db},
		Idempotency: &idempotencyRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}

type campaignRepository struct {
	db *gorm.DB
}

func (r *campaignRepository) Create(ctx context.Context, row domain.Campaign) error {
	rec := campaignModel{
		CampaignID:        row.CampaignID,
		Name:              row.Name,
		RewardDescription: row.RewardDescription,
		CreatedAt:         row.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, campaignID string) (domain.Campaign, error) {
	var rec campaignModel
	if err := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Campaign{}, domain.ErrNotFound
		}
		return domain.Campaign{}, err
	}
	return toDomainCampaign(rec), nil
}

func (r *campaignRepository) List(ctx context.Context) ([]domain.Campaign, error) {
	var rows []campaignModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Campaign, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainCampaign(row))
	}
	return result, nil
}

type referralRepository struct {
	db *gorm.DB
}

func (r *referralRepository) Create(ctx context.Context, row domain.Referral) error {
	rec := referralModel{
		ReferralID:    row.ReferralID,
		CampaignID:    row.CampaignID,
		ReferrerEmail: row.ReferrerEmail,
		Code:          row.Code,
		CreatedAt:     row.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *referralRepository) GetByID(ctx context.Context, referralID string) (domain.Referral, error) {
	var rec referralModel
	if err := r.db.WithContext(ctx).Where("referral_id = ?", referralID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Referral{}, domain.ErrNotFound
		}
		return domain.Referral{}, err
	}
	return toDomainReferral(rec), nil
}

func (r *referralRepository) GetByCode(ctx context.Context, code string) (domain.Referral, error) {
	var rec referralModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Referral{}, domain.ErrNotFound
		}
		return domain.Referral{}, err
	}
	return toDomainReferral(rec), nil
}

func (r *referralRepository) ListByCampaignID(ctx context.Context, campaignID string) ([]domain.Referral, error) {
	var rows []referralModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Referral, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainReferral(row))
	}
	return result, nil
}

type rewardRepository struct {
	db *gorm.DB
}

func (r *rewardRepository) Create(ctx context.Context, row domain.Reward) error {
	rec := rewardModel{
		RewardID:    row.RewardID,
		ReferralID:  row.ReferralID,
		ActionType:  row.ActionType,
		RewardType:  row.RewardType,
		RewardValue: row.RewardValue,
		Status:      row.Status,
		CouponCode:  nullableString(row.CouponCode),
		ExpiresAt:   row.ExpiresAt,
		FulfilledAt: row.FulfilledAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *rewardRepository) GetByID(ctx context.Context, rewardID string) (domain.Reward, error) {
	var rec rewardModel
	if err := r.db.WithContext(ctx).Where("reward_id = ?", rewardID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Reward{}, domain.ErrNotFound
		}
		return domain.Reward{}, err
	}
	return toDomainReward(rec), nil
}

func (r *rewardRepository) ListByReferralID(ctx context.Context, referralID string) ([]domain.Reward, error) {
	var rows []rewardModel
	if err := r.db.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Reward, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainReward(row))
	}
	return result, nil
}

// MarkFulfilled is a single conditional update guarded on the pending status,
// so two concurrent fulfillment calls for the same reward resolve to exactly
// one winner without a read-modify-write window.
func (r *rewardRepository) MarkFulfilled(ctx context.Context, rewardID, couponCode string, expiresAt *time.Time, at time.Time) (domain.Reward, error) {
	res := r.db.WithContext(ctx).
		Model(&rewardModel{}).
		Where("reward_id = ?", rewardID).
		Where("status = ?", domain.RewardStatusPending).
		Updates(map[string]any{
			"status":       domain.RewardStatusFulfilled,
			"coupon_code":  couponCode,
			"expires_at":   expiresAt,
			"fulfilled_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return domain.Reward{}, res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&rewardModel{}).Where("reward_id = ?", rewardID).Count(&exists).Error; err != nil {
			return domain.Reward{}, err
		}
		if exists == 0 {
			return domain.Reward{}, domain.ErrNotFound
		}
		return domain.Reward{}, domain.ErrAlreadyFulfilled
	}
	return r.GetByID(ctx, rewardID)
}

type idempotencyRepository struct {
	db *gorm.DB
}

func (r *idempotencyRepository) Get(ctx context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	var rec idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		Where("expires_at > ?", now).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := ports.IdempotencyRecord{
		Key:         rec.IdempotencyKey,
		RequestHash: rec.RequestHash,
		ExpiresAt:   rec.ExpiresAt,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.ResponseBody != nil {
		out.ResponseBody = []byte(*rec.ResponseBody)
	}
	return &out, nil
}

func (r *idempotencyRepository) Put(ctx context.Context, in ports.IdempotencyRecord) error {
	rec := idempotencyModel{
		IdempotencyKey: in.Key,
		RequestHash:    in.RequestHash,
		ResponseBody:   nullableString(string(in.ResponseBody)),
		ExpiresAt:      in.ExpiresAt,
		CreatedAt:      in.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			// Concurrent retry already stored the record; the stored one wins.
			return nil
		}
		return err
	}
	return nil
}

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) Enqueue(ctx context.Context, rec ports.OutboxRecord) error {
	row := outboxModel{
		RecordID:     rec.RecordID,
		EventType:    rec.EventType,
		PartitionKey: rec.PartitionKey,
		Payload:      string(rec.Payload),
		CreatedAt:    rec.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, ports.OutboxRecord{
			RecordID:     row.RecordID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      []byte(row.Payload),
			CreatedAt:    row.CreatedAt,
			SentAt:       row.SentAt,
		})
	}
	return result, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("record_id = ?", recordID).
		Update("sent_at", at).Error
}

func toDomainCampaign(row campaignModel) domain.Campaign {
	return domain.Campaign{
		CampaignID:        row.CampaignID,
		Name:              row.Name,
		RewardDescription: row.RewardDescription,
		CreatedAt:         row.CreatedAt,
	}
}

func toDomainReferral(row referralModel) domain.Referral {
	return domain.Referral{
		ReferralID:    row.ReferralID,
		CampaignID:    row.CampaignID,
		ReferrerEmail: row.ReferrerEmail,
		Code:          row.Code,
		CreatedAt:     row.CreatedAt,
	}
}

func toDomainReward(row rewardModel) domain.Reward {
	coupon := ""
	if row.CouponCode != nil {
		coupon = *row.CouponCode
	}
	return domain.Reward{
		RewardID:    row.RewardID,
		ReferralID:  row.ReferralID,
		ActionType:  row.ActionType,
		RewardType:  row.RewardType,
		RewardValue: row.RewardValue,
		Status:      row.Status,
		CouponCode:  coupon,
		ExpiresAt:   row.ExpiresAt,
		FulfilledAt: row.FulfilledAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
