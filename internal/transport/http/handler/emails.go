package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/email"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

// SendEmailRequest is the wire shape of a dispatch request. Exactly one of
// the typed payload blocks should be set, matching the email type.
type SendEmailRequest struct {
	EmailType     string              `json:"email_type"`
	UserID        string              `json:"user_id,omitempty"`
	B2CCustomerID string              `json:"b2c_customer_id,omitempty"`
	CustomerInfo  domain.CustomerInfo `json:"customer_info"`
	OrderID       string              `json:"order_id,omitempty"`
	Order         *domain.Order       `json:"order,omitempty"`
	Language      string              `json:"language,omitempty"`

	Code        *domain.CodePayload        `json:"code,omitempty"`
	Credentials *domain.CredentialsPayload `json:"credentials,omitempty"`
	Application *domain.ApplicationPayload `json:"application,omitempty"`
	Affiliate   *domain.AffiliatePayload   `json:"affiliate,omitempty"`
}

func (req *SendEmailRequest) toContext() domain.EmailContext {
	return domain.EmailContext{
		EmailType:     domain.EmailType(req.EmailType),
		UserID:        req.UserID,
		B2CCustomerID: req.B2CCustomerID,
		CustomerInfo:  req.CustomerInfo,
		OrderID:       req.OrderID,
		Order:         req.Order,
		Language:      req.Language,
		Code:          req.Code,
		Credentials:   req.Credentials,
		Application:   req.Application,
		Affiliate:     req.Affiliate,
	}
}

type logLister interface {
	ListByRecipient(ctx context.Context, to string) ([]domain.EmailLogEntry, error)
}

// EmailHandler exposes dispatch and delivery-log endpoints, admin only.
type EmailHandler struct {
	svc  email.Service
	logs logLister
}

func NewEmailHandler(svc email.Service, logs logLister) *EmailHandler {
	return &EmailHandler{svc: svc, logs: logs}
}

// Send dispatches one email. Validation and transport failures come back in
// the body as {success:false} with a 200, matching the dispatch contract;
// only a malformed request is a transport-level error.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Send(r.Context(), req.toContext())
	if err != nil {
		writeJSON(w, http.StatusOK, domain.SendResult{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Log lists delivery attempts for one recipient address.
func (h *EmailHandler) Log(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		writeError(w, http.StatusBadRequest, "missing to parameter")
		return
	}
	entries, err := h.logs.ListByRecipient(r.Context(), to)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
