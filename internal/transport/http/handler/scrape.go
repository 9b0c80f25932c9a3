package handler

import (
	"encoding/json"
	"net/http"

	scrapeapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/scrape"
)

// ScrapeHandler exposes the website metadata fetcher used by the admin UI
// for link previews.
type ScrapeHandler struct {
	svc scrapeapp.Service
}

func NewScrapeHandler(svc scrapeapp.Service) *ScrapeHandler {
	return &ScrapeHandler{svc: svc}
}

func (h *ScrapeHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	meta, err := h.svc.Fetch(r.Context(), req.URL)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
