package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	affiliateapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/affiliate"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// AffiliateHandler handles the affiliate program: public application and
// click tracking, admin-only approval lifecycle.
type AffiliateHandler struct {
	svc affiliateapp.Service
}

func NewAffiliateHandler(svc affiliateapp.Service) *AffiliateHandler {
	return &AffiliateHandler{svc: svc}
}

func (h *AffiliateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req domain.AffiliateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.SubmitApplication(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AffiliateHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req domain.ApproveAffiliateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.AffiliateID = chi.URLParam(r, "id")
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.Approve(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AffiliateHandler) Deny(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Deny(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AffiliateHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Suspend(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AffiliateHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Click records a referral-link hit. Unknown or inactive codes are accepted
// silently so the endpoint leaks nothing about the program roster.
func (h *AffiliateHandler) Click(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RecordClick(r.Context(), chi.URLParam(r, "code")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}
