package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/api/dto"
	"github.com/hravenhq/hraven/internal/blob"
	"github.com/hravenhq/hraven/internal/tenant"
)

// UploadHandler stores avatars and logos. Logo uploads require an
// existing tenant; the route shape makes uploading before tenant
// creation impossible.
type UploadHandler struct {
	blobs   *blob.Store
	tenants *tenant.Service
}

func NewUploadHandler(blobs *blob.Store, tenants *tenant.Service) *UploadHandler {
	return &UploadHandler{blobs: blobs, tenants: tenants}
}

// Avatar handles POST /upload-avatar/{tenantId}/avatar, field "avatar".
func (h *UploadHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tenant id"})
		return
	}

	url, ok := h.save(w, r, tenantID, blob.KindAvatar, "avatar")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}

// Logo handles POST /api/upload/{tenantId}/logo, field "logo".
func (h *UploadHandler) Logo(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tenant id"})
		return
	}

	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	url, ok := h.save(w, r, tenantID, blob.KindLogo, "logo")
	if !ok {
		return
	}

	if _, err := h.tenants.SetLogoURL(r.Context(), tenantID, url); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"logoUrl": url})
}

func (h *UploadHandler) save(w http.ResponseWriter, r *http.Request, tenantID uuid.UUID, kind blob.Kind, field string) (string, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No file uploaded"})
		return "", false
	}
	defer file.Close()

	url, err := h.blobs.Save(tenantID, kind, file, header.Filename)
	if err != nil {
		writeBlobError(w, err)
		return "", false
	}
	return url, true
}
