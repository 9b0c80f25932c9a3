package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	presenceapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/presence"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
)

// PresenceHandler handles admin presence heartbeats and roster reads.
type PresenceHandler struct {
	svc presenceapp.Service
}

func NewPresenceHandler(svc presenceapp.Service) *PresenceHandler {
	return &PresenceHandler{svc: svc}
}

// Heartbeat records the caller's activity. Write failures are swallowed by
// the service, so this always acknowledges.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.svc.Heartbeat(r.Context(), claims.CredentialID, claims.Email, req)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

func (h *PresenceHandler) Offline(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.svc.MarkOffline(r.Context(), claims.CredentialID)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

func (h *PresenceHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
