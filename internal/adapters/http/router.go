package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(handler *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	if logger != nil {
		r.Use(loggingMiddleware(logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Get("/", handler.dashboard)
	r.Handle("/static/*", staticHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/campaigns", handler.createCampaign)
		r.Get("/campaigns", handler.listCampaigns)
		r.Get("/campaigns/{campaign_id}", handler.getCampaign)
		r.Get("/campaigns/{campaign_id}/referrals", handler.listCampaignReferrals)

		r.Post("/referrals", handler.createReferral)
		r.Get("/referrals/{code}", handler.getReferralByCode)
		r.Get("/referrals/{referral_id}/rewards", handler.listReferralRewards)

		r.Post("/rewards", handler.createReward)
		r.Post("/rewards/{reward_id}/fulfill", handler.fulfillReward)

		r.Post("/webhooks/track", handler.trackAction)

		r.Get("/widget/{campaign_id}", handler.getWidgetConfig)
	})
	return r
}
