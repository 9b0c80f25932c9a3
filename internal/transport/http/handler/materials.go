package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	materialapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/material"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
)

// MaterialHandler handles marketing material uploads and downloads.
type MaterialHandler struct {
	svc materialapp.Service
}

func NewMaterialHandler(svc materialapp.Service) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

func (h *MaterialHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	m, err := h.svc.Upload(r.Context(), materialapp.UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		CustomerID:  r.FormValue("customer_id"),
		UploadedBy:  claims.CredentialID,
		Body:        f,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		materials, err := h.svc.ListByCustomer(r.Context(), customerID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, materials)
		return
	}
	materials, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

// Download returns a short-lived presigned URL instead of proxying the blob.
func (h *MaterialHandler) Download(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "material deleted"})
}
