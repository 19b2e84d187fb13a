package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/viralforge/referral-rewards/internal/application"
	"github.com/viralforge/referral-rewards/internal/contracts"
)

const (
	signatureHeader = "X-Webhook-Signature"
	maxWebhookBody  = 1 << 20
)

// trackAction ingests a signed action event. The signature is checked over
// the raw body bytes exactly as transmitted, before the JSON is decoded and
// before any store access happens.
func (h *Handler) trackAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "unreadable request body")
		return
	}
	if err := h.verifier.Verify(body, r.Header.Get(signatureHeader)); err != nil {
		writeDomainError(w, err)
		return
	}

	var req contracts.TrackActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid json body")
		return
	}
	var metadata map[string]any
	if len(req.Metadata) > 0 {
		if err := json.Unmarshal(req.Metadata, &metadata); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "metadata must be an object")
			return
		}
	}

	out, err := h.service.TrackAction(r.Context(), application.TrackActionInput{
		ReferralCode:   req.ReferralCode,
		ActionType:     req.ActionType,
		Metadata:       metadata,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, contracts.TrackActionResponse{
		Status:       "tracked",
		ReferralCode: out.ReferralCode,
		ActionType:   out.ActionType,
		RewardID:     out.Reward.RewardID,
		RewardStatus: out.Reward.Status,
	})
}
