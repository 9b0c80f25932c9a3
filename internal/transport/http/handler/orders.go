package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	orderapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/order"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/validate"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
)

type userResolver interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// OrderHandler handles order placement and lifecycle endpoints.
type OrderHandler struct {
	svc   orderapp.Service
	users userResolver
}

func NewOrderHandler(svc orderapp.Service, users userResolver) *OrderHandler {
	return &OrderHandler{svc: svc, users: users}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	o, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OrderID = chi.URLParam(r, "id")
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// SendConfirmation re-sends the confirmation email for an order. The dispatch
// outcome comes back in the body so the admin sees why a send failed.
func (h *OrderHandler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SendConfirmation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListMine lists the authenticated reseller's own orders. Admins pass a
// user_id query parameter to read another account's history.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" || claims.Role != domain.RoleAdmin {
		u, err := h.users.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			httpError(w, err)
			return
		}
		userID = u.UserID
	}
	orders, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
