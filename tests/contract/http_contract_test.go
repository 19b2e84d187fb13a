package contract

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	eventadapter "github.com/viralforge/referral-rewards/internal/adapters/events"
	httpadapter "github.com/viralforge/referral-rewards/internal/adapters/http"
	"github.com/viralforge/referral-rewards/internal/adapters/memory"
	"github.com/viralforge/referral-rewards/internal/adapters/security"
	"github.com/viralforge/referral-rewards/internal/application"
	"github.com/viralforge/referral-rewards/internal/domain"
)

type fixture struct {
	server *httptest.Server
	repos  memory.Repositories
}

func newFixture(t *testing.T, webhookSecret string) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Campaigns: repos.Campaigns, Referrals: repos.Referrals, Rewards: repos.Rewards,
		Idempotency: repos.Idempotency, Outbox: repos.Outbox,
		WidgetCache:  memory.NewWidgetConfigCache(),
		DomainEvents: eventadapter.NewMemoryDomainPublisher(),
	})
	verifier := security.NewWebhookVerifier(webhookSecret)
	router := httpadapter.NewRouter(httpadapter.NewHandler(svc, verifier), nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &fixture{server: server, repos: repos}
}

func (f *fixture) postJSON(t *testing.T, path string, body string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return res, decodeEnvelope(t, res)
}

func (f *fixture) getJSON(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(f.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return res, decodeEnvelope(t, res)
}

func decodeEnvelope(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func dataField(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", envelope)
	}
	return data
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// seedKnownReferral inserts a referral with a fixed code straight through the
// repository, since API-issued codes are random.
func seedKnownReferral(t *testing.T, f *fixture, code string) domain.Referral {
	t.Helper()
	ctx := context.Background()
	campaign := domain.Campaign{
		CampaignID:        "cmp_seed",
		Name:              "Seed Campaign",
		RewardDescription: "store credit",
		CreatedAt:         time.Now().UTC(),
	}
	if err := f.repos.Campaigns.Create(ctx, campaign); err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	referral := domain.Referral{
		ReferralID:    "ref_seed",
		CampaignID:    campaign.CampaignID,
		ReferrerEmail: "alice@example.com",
		Code:          code,
		CreatedAt:     time.Now().UTC(),
	}
	if err := f.repos.Referrals.Create(ctx, referral); err != nil {
		t.Fatalf("seed referral: %v", err)
	}
	return referral
}

func TestWebhookTrackAcceptsSignedRequest(t *testing.T) {
	const secret = "s3cr3t"
	f := newFixture(t, secret)
	referral := seedKnownReferral(t, f, "ABC123XY")

	body := []byte(`{"referral_code":"ABC123XY","action_type":"signup","metadata":{"reward_value":50}}`)
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/webhooks/track", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signBody(secret, body))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	envelope := decodeEnvelope(t, res)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", res.StatusCode, envelope)
	}
	data := dataField(t, envelope)
	if data["status"] != "tracked" || data["referral_code"] != "ABC123XY" || data["reward_status"] != "pending" {
		t.Fatalf("unexpected track response: %v", data)
	}

	res2, envelope2 := f.getJSON(t, "/api/v1/referrals/"+referral.ReferralID+"/rewards")
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("list rewards: %d", res2.StatusCode)
	}
	items := dataField(t, envelope2)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 reward, got %d", len(items))
	}
	reward := items[0].(map[string]any)
	if reward["reward_value"] != float64(50) || reward["status"] != "pending" {
		t.Fatalf("unexpected reward: %v", reward)
	}
}

func TestWebhookTrackRejectsBadSignature(t *testing.T) {
	f := newFixture(t, "s3cr3t")
	referral := seedKnownReferral(t, f, "ABC123XY")

	body := []byte(`{"referral_code":"ABC123XY","action_type":"signup","metadata":{"reward_value":50}}`)
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/webhooks/track", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Webhook-Signature", "deadbeef")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	envelope := decodeEnvelope(t, res)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %v", res.StatusCode, envelope)
	}
	if envelope["code"] != "authentication_failed" {
		t.Fatalf("expected authentication_failed, got %v", envelope["code"])
	}

	rows, err := f.repos.Rewards.ListByReferralID(context.Background(), referral.ReferralID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected webhook still created %d rewards", len(rows))
	}
}

func TestWebhookTrackFailsClosedWithoutSecret(t *testing.T) {
	f := newFixture(t, "")
	seedKnownReferral(t, f, "ABC123XY")

	body := []byte(`{"referral_code":"ABC123XY","action_type":"signup","metadata":{"reward_value":50}}`)
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/webhooks/track", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Webhook-Signature", signBody("s3cr3t", body))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	envelope := decodeEnvelope(t, res)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with no secret configured, got %d: %v", res.StatusCode, envelope)
	}
}

func TestCampaignReferralRewardLifecycle(t *testing.T) {
	f := newFixture(t, "s3cr3t")

	res, envelope := f.postJSON(t, "/api/v1/campaigns", `{"name":"Spring Launch","reward_description":"10% off"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create campaign: %d %v", res.StatusCode, envelope)
	}
	campaignID := dataField(t, envelope)["campaign_id"].(string)
	if !strings.HasPrefix(campaignID, "cmp_") {
		t.Fatalf("unexpected campaign id %q", campaignID)
	}

	res, envelope = f.postJSON(t, "/api/v1/referrals", `{"campaign_id":"`+campaignID+`","referrer_email":"Alice@Example.com"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create referral: %d %v", res.StatusCode, envelope)
	}
	referralData := dataField(t, envelope)
	referralID := referralData["referral_id"].(string)
	code := referralData["code"].(string)
	if referralData["referrer_email"] != "alice@example.com" {
		t.Fatalf("email not normalized: %v", referralData["referrer_email"])
	}
	if len(code) != 8 {
		t.Fatalf("expected 8-char code, got %q", code)
	}

	res, envelope = f.getJSON(t, "/api/v1/referrals/"+code)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get referral by code: %d %v", res.StatusCode, envelope)
	}
	if dataField(t, envelope)["referral_id"] != referralID {
		t.Fatalf("code lookup returned wrong referral")
	}

	res, envelope = f.getJSON(t, "/api/v1/widget/"+campaignID)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("widget config: %d %v", res.StatusCode, envelope)
	}
	widget := dataField(t, envelope)
	if widget["campaign_name"] != "Spring Launch" || widget["primary_color"] == "" {
		t.Fatalf("unexpected widget config: %v", widget)
	}

	res, envelope = f.postJSON(t, "/api/v1/rewards", `{"referral_id":"`+referralID+`","action_type":"signup","reward_value":25}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create reward: %d %v", res.StatusCode, envelope)
	}
	rewardData := dataField(t, envelope)
	rewardID := rewardData["reward_id"].(string)
	if rewardData["status"] != "pending" || rewardData["reward_type"] != "credit" {
		t.Fatalf("unexpected reward: %v", rewardData)
	}

	res, envelope = f.postJSON(t, "/api/v1/rewards/"+rewardID+"/fulfill", `{"coupon_code":"WELCOME25","expires_at":"2026-12-31T00:00:00Z"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fulfill reward: %d %v", res.StatusCode, envelope)
	}
	fulfilled := dataField(t, envelope)
	if fulfilled["status"] != "fulfilled" || fulfilled["coupon_code"] != "WELCOME25" {
		t.Fatalf("unexpected fulfilled reward: %v", fulfilled)
	}
	if fulfilled["fulfilled_at"] == "" || fulfilled["expires_at"] != "2026-12-31T00:00:00Z" {
		t.Fatalf("fulfillment timestamps wrong: %v", fulfilled)
	}

	res, envelope = f.postJSON(t, "/api/v1/rewards/"+rewardID+"/fulfill", `{"coupon_code":"AGAIN"}`)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on repeat fulfillment, got %d: %v", res.StatusCode, envelope)
	}
	if envelope["code"] != "invalid_state_transition" {
		t.Fatalf("expected invalid_state_transition, got %v", envelope["code"])
	}
}

func TestUnknownResourcesReturnNotFound(t *testing.T) {
	f := newFixture(t, "s3cr3t")

	res, envelope := f.getJSON(t, "/api/v1/campaigns/cmp_missing")
	if res.StatusCode != http.StatusNotFound || envelope["code"] != "not_found" {
		t.Fatalf("campaign lookup: %d %v", res.StatusCode, envelope)
	}
	res, envelope = f.getJSON(t, "/api/v1/referrals/NOPECODE")
	if res.StatusCode != http.StatusNotFound || envelope["code"] != "not_found" {
		t.Fatalf("referral lookup: %d %v", res.StatusCode, envelope)
	}
}

func TestDashboardAndHealthEndpoints(t *testing.T) {
	f := newFixture(t, "s3cr3t")
	seedKnownReferral(t, f, "ABC123XY")

	res, err := http.Get(f.server.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("dashboard content type %q", ct)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(res.Body); err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !strings.Contains(buf.String(), "Seed Campaign") {
		t.Fatalf("dashboard missing campaign listing")
	}

	res2, envelope := f.getJSON(t, "/healthz")
	if res2.StatusCode != http.StatusOK || envelope["status"] != "success" {
		t.Fatalf("healthz: %d %v", res2.StatusCode, envelope)
	}
}
