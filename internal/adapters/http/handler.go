package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/referral-rewards/internal/adapters/security"
	"github.com/viralforge/referral-rewards/internal/application"
	"github.com/viralforge/referral-rewards/internal/contracts"
	"github.com/viralforge/referral-rewards/internal/domain"
)

type Handler struct {
	service  *application.Service
	verifier *security.WebhookVerifier
}

func NewHandler(service *application.Service, verifier *security.WebhookVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid json body")
		return
	}
	row, err := h.service.CreateCampaign(r.Context(), application.CreateCampaignInput{
		Name:              req.Name,
		RewardDescription: req.RewardDescription,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toCampaignResponse(row))
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]contracts.CampaignResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toCampaignResponse(row))
	}
	writeSuccess(w, http.StatusOK, contracts.CampaignListResponse{Items: items})
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.GetCampaign(r.Context(), chi.URLParam(r, "campaign_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toCampaignResponse(row))
}

func (h *Handler) createReferral(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid json body")
		return
	}
	row, err := h.service.CreateReferral(r.Context(), application.CreateReferralInput{
		CampaignID:    req.CampaignID,
		ReferrerEmail: req.ReferrerEmail,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toReferralResponse(row))
}

func (h *Handler) getReferralByCode(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.GetReferralByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toReferralResponse(row))
}

func (h *Handler) listCampaignReferrals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListReferralsByCampaign(r.Context(), chi.URLParam(r, "campaign_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]contracts.ReferralResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toReferralResponse(row))
	}
	writeSuccess(w, http.StatusOK, contracts.ReferralListResponse{Items: items})
}

func (h *Handler) createReward(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid json body")
		return
	}
	row, err := h.service.CreateReward(r.Context(), application.CreateRewardInput{
		ReferralID:  req.ReferralID,
		ActionType:  req.ActionType,
		RewardType:  req.RewardType,
		RewardValue: req.RewardValue,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toRewardResponse(row))
}

func (h *Handler) listReferralRewards(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListRewardsByReferral(r.Context(), chi.URLParam(r, "referral_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]contracts.RewardResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toRewardResponse(row))
	}
	writeSuccess(w, http.StatusOK, contracts.RewardListResponse{Items: items})
}

func (h *Handler) fulfillReward(w http.ResponseWriter, r *http.Request) {
	var req contracts.FulfillRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid json body")
		return
	}
	var expiresAt *time.Time
	if raw := strings.TrimSpace(req.ExpiresAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "expires_at must be RFC3339")
			return
		}
		expiresAt = &parsed
	}
	row, err := h.service.FulfillReward(r.Context(), application.FulfillRewardInput{
		RewardID:   chi.URLParam(r, "reward_id"),
		CouponCode: req.CouponCode,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toRewardResponse(row))
}

func (h *Handler) getWidgetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetWidgetConfig(r.Context(), chi.URLParam(r, "campaign_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.WidgetConfigResponse{
		CampaignID:        cfg.CampaignID,
		CampaignName:      cfg.CampaignName,
		RewardDescription: cfg.RewardDescription,
		PrimaryColor:      cfg.PrimaryColor,
		APIBaseURL:        cfg.APIBaseURL,
	})
}

func toCampaignResponse(row domain.Campaign) contracts.CampaignResponse {
	return contracts.CampaignResponse{
		CampaignID:        row.CampaignID,
		Name:              row.Name,
		RewardDescription: row.RewardDescription,
		CreatedAt:         row.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toReferralResponse(row domain.Referral) contracts.ReferralResponse {
	return contracts.ReferralResponse{
		ReferralID:    row.ReferralID,
		CampaignID:    row.CampaignID,
		ReferrerEmail: row.ReferrerEmail,
		Code:          row.Code,
		CreatedAt:     row.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRewardResponse(row domain.Reward) contracts.RewardResponse {
	out := contracts.RewardResponse{
		RewardID:    row.RewardID,
		ReferralID:  row.ReferralID,
		ActionType:  row.ActionType,
		RewardType:  row.RewardType,
		RewardValue: row.RewardValue,
		Status:      row.Status,
		CouponCode:  row.CouponCode,
		CreatedAt:   row.CreatedAt.UTC().Format(time.RFC3339),
	}
	if row.ExpiresAt != nil {
		out.ExpiresAt = row.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if row.FulfilledAt != nil {
		out.FulfilledAt = row.FulfilledAt.UTC().Format(time.RFC3339)
	}
	return out
}
