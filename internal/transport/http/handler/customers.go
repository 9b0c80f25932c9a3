package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/customer"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
)

// CustomerHandler handles B2B account endpoints: the public application
// intake plus the admin-only lifecycle operations.
type CustomerHandler struct {
	svc customer.Service
}

func NewCustomerHandler(svc customer.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// Apply is the public B2B application intake.
func (h *CustomerHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req domain.B2BApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := h.svc.SubmitApplication(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *CustomerHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := h.svc.CreateAdminUser(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// ToggleActiveRequest carries the state the account should end up in.
type ToggleActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ToggleActive sets the account's active flag to the requested value. The id
// param accepts either a user ID or an email address.
func (h *CustomerHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	var req ToggleActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := h.svc.ToggleActiveStatus(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Delete runs the account deletion cascade and reports per-collection counts
// even when parts of the cascade fail.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DeleteAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if result != nil {
			writeJSON(w, http.StatusInternalServerError, result)
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
