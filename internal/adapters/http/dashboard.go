package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// dashboard renders the campaign management page. Presentation only; every
// mutation goes through the JSON API.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, map[string]any{"Campaigns": campaigns}); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}
