package unit

import (
	"context"
	"errors"
	"strings"
	"testing"

	eventadapter "github.com/viralforge/referral-rewards/internal/adapters/events"
	"github.com/viralforge/referral-rewards/internal/adapters/memory"
	"github.com/viralforge/referral-rewards/internal/application"
	"github.com/viralforge/referral-rewards/internal/domain"
)

func newServiceWithPublisher() (*application.Service, *eventadapter.MemoryDomainPublisher) {
	repos := memory.NewRepositories()
	domainPub := eventadapter.NewMemoryDomainPublisher()
	svc := application.NewService(application.Dependencies{
		Campaigns: repos.Campaigns, Referrals: repos.Referrals, Rewards: repos.Rewards,
		Idempotency: repos.Idempotency, Outbox: repos.Outbox,
		WidgetCache: memory.NewWidgetConfigCache(), DomainEvents: domainPub,
	})
	return svc, domainPub
}

func seedReferral(t *testing.T, svc *application.Service) domain.Referral {
	t.Helper()
	ctx := context.Background()
	campaign, err := svc.CreateCampaign(ctx, application.CreateCampaignInput{
		Name:              "Spring Launch",
		RewardDescription: "10% off next order",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	referral, err := svc.CreateReferral(ctx, application.CreateReferralInput{
		CampaignID:    campaign.CampaignID,
		ReferrerEmail: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("create referral: %v", err)
	}
	return referral
}

func TestTrackActionCreatesPendingReward(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	ctx := context.Background()
	referral := seedReferral(t, svc)

	out, err := svc.TrackAction(ctx, application.TrackActionInput{
		ReferralCode: referral.Code,
		ActionType:   "signup",
		Metadata:     map[string]any{"reward_value": float64(50)},
	})
	if err != nil {
		t.Fatalf("track action: %v", err)
	}
	if out.Reward.Status != domain.RewardStatusPending {
		t.Fatalf("expected pending reward, got %q", out.Reward.Status)
	}
	if out.Reward.RewardValue != 50 {
		t.Fatalf("expected reward value 50, got %v", out.Reward.RewardValue)
	}
	if !strings.HasPrefix(out.Reward.RewardID, "rwd_") {
		t.Fatalf("unexpected reward id %q", out.Reward.RewardID)
	}
	rows, err := svc.ListRewardsByReferral(ctx, referral.ReferralID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 reward, got %d", len(rows))
	}
}

func TestTrackActionUnknownCodeCreatesNothing(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	ctx := context.Background()
	referral := seedReferral(t, svc)

	_, err := svc.TrackAction(ctx, application.TrackActionInput{
		ReferralCode: "NOPE1234",
		ActionType:   "signup",
		Metadata:     map[string]any{"reward_value": float64(25)},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	rows, err := svc.ListRewardsByReferral(ctx, referral.ReferralID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rewards, got %d", len(rows))
	}
}

func TestTrackActionRequiresPositiveRewardValue(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	ctx := context.Background()
	referral := seedReferral(t, svc)

	cases := []map[string]any{
		nil,
		{},
		{"reward_value": "fifty"},
		{"reward_value": float64(0)},
		{"reward_value": float64(-5)},
	}
	for i, metadata := range cases {
		_, err := svc.TrackAction(ctx, application.TrackActionInput{
			ReferralCode: referral.Code,
			ActionType:   "purchase",
			Metadata:     metadata,
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestTrackActionIdempotentReplay(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	ctx := context.Background()
	referral := seedReferral(t, svc)

	in := application.TrackActionInput{
		ReferralCode:   referral.Code,
		ActionType:     "signup",
		Metadata:       map[string]any{"reward_value": float64(50)},
		IdempotencyKey: "delivery-1",
	}
	first, err := svc.TrackAction(ctx, in)
	if err != nil {
		t.Fatalf("first track: %v", err)
	}
	second, err := svc.TrackAction(ctx, in)
	if err != nil {
		t.Fatalf("replay track: %v", err)
	}
	if first.Reward.RewardID != second.Reward.RewardID {
		t.Fatalf("replay created a new reward: %s vs %s", first.Reward.RewardID, second.Reward.RewardID)
	}
	rows, err := svc.ListRewardsByReferral(ctx, referral.ReferralID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 reward after replay, got %d", len(rows))
	}

	in.Metadata = map[string]any{"reward_value": float64(999)}
	if _, err := svc.TrackAction(ctx, in); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict for reused key, got %v", err)
	}
}

func TestFulfillRewardIsStrict(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	ctx := context.Background()
	referral := seedReferral(t, svc)

	reward, err := svc.CreateReward(ctx, application.CreateRewardInput{
		ReferralID:  referral.ReferralID,
		ActionType:  "signup",
		RewardValue: 10,
	})
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	fulfilled, err := svc.FulfillReward(ctx, application.FulfillRewardInput{
		RewardID:   reward.RewardID,
		CouponCode: "WELCOME10",
	})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if fulfilled.Status != domain.RewardStatusFulfilled || fulfilled.CouponCode != "WELCOME10" {
		t.Fatalf("unexpected fulfilled reward: %+v", fulfilled)
	}
	if fulfilled.FulfilledAt == nil {
		t.Fatalf("fulfilled_at not set")
	}

	_, err = svc.FulfillReward(ctx, application.FulfillRewardInput{
		RewardID:   reward.RewardID,
		CouponCode: "WELCOME10-AGAIN",
	})
	if !errors.Is(err, domain.ErrAlreadyFulfilled) {
		t.Fatalf("expected ErrAlreadyFulfilled, got %v", err)
	}

	_, err = svc.FulfillReward(ctx, application.FulfillRewardInput{
		RewardID:   "rwd_missing",
		CouponCode: "X",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown reward, got %v", err)
	}
}

func TestCreateReferralUnknownCampaign(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	_, err := svc.CreateReferral(context.Background(), application.CreateReferralInput{
		CampaignID:    "cmp_missing",
		ReferrerEmail: "bob@example.com",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReferralCodesAreUniqueAndWellFormed(t *testing.T) {
	svc, _ := newServiceWithPublisher()
	ctx := context.Background()
	campaign, err := svc.CreateCampaign(ctx, application.CreateCampaignInput{
		Name:              "Bulk",
		RewardDescription: "credit",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		referral, err := svc.CreateReferral(ctx, application.CreateReferralInput{
			CampaignID:    campaign.CampaignID,
			ReferrerEmail: "bulk@example.com",
		})
		if err != nil {
			t.Fatalf("create referral %d: %v", i, err)
		}
		if len(referral.Code) != 8 {
			t.Fatalf("expected 8-char code, got %q", referral.Code)
		}
		for _, c := range referral.Code {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("code %q contains %q outside alphabet", referral.Code, c)
			}
		}
		if seen[referral.Code] {
			t.Fatalf("duplicate code issued: %q", referral.Code)
		}
		seen[referral.Code] = true
	}
}

func TestFlushOutboxPublishesCanonicalEvents(t *testing.T) {
	svc, pub := newServiceWithPublisher()
	ctx := context.Background()
	referral := seedReferral(t, svc)

	_, err := svc.TrackAction(ctx, application.TrackActionInput{
		ReferralCode: referral.Code,
		ActionType:   "signup",
		Metadata:     map[string]any{"reward_value": float64(50)},
	})
	if err != nil {
		t.Fatalf("track action: %v", err)
	}
	if err := svc.FlushOutbox(ctx); err != nil {
		t.Fatalf("flush outbox: %v", err)
	}

	events := pub.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 published events (campaign + code + reward), got %d", len(events))
	}
	wantTypes := []string{
		domain.EventCampaignCreated,
		domain.EventReferralCreated,
		domain.EventRewardCreated,
	}
	for i, e := range events {
		if e.EventType != wantTypes[i] {
			t.Fatalf("event %d: expected %s, got %s", i, wantTypes[i], e.EventType)
		}
		if e.PartitionKey == "" || e.PartitionKeyPath == "" {
			t.Fatalf("event %d missing partition key info: %+v", i, e)
		}
	}
	if events[2].PartitionKeyPath != "data.referral_id" {
		t.Fatalf("reward event partition key path: %s", events[2].PartitionKeyPath)
	}
	if events[2].PartitionKey != referral.ReferralID {
		t.Fatalf("reward event partition key: %s", events[2].PartitionKey)
	}

	// A second flush finds nothing pending and publishes nothing new.
	if err := svc.FlushOutbox(ctx); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if got := len(pub.Events()); got != 3 {
		t.Fatalf("second flush republished records, got %d events", got)
	}
}
