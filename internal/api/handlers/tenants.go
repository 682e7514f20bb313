package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/api/dto"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/tenant"
)

type TenantHandler struct {
	tenants *tenant.Service
}

func NewTenantHandler(tenants *tenant.Service) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

func tenantInput(req dto.TenantRequest) tenant.Input {
	return tenant.Input{
		Name:             req.Name,
		Domain:           req.Domain,
		Industry:         req.Industry,
		IndustryOther:    req.IndustryOther,
		SubscriptionTier: req.SubscriptionTier,
		CompanyWebsite:   req.CompanyWebsite,
		BillingStreet:    req.BillingStreet,
		BillingCity:      req.BillingCity,
		BillingState:     req.BillingState,
		BillingZip:       req.BillingZip,
		BillingCountry:   req.BillingCountry,
		BillingPhone:     req.BillingPhone,
		MFAEnabled:       req.MFAEnabled,
		AllowedMFA:       req.AllowedMFA,
		IsActive:         req.IsActive,
	}
}

// List handles GET /api/tenants
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	tenants, err := h.tenants.List(r.Context(), activeOnly)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tenants)
}

// Get handles GET /api/tenants/{id}
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tenant id"})
		return
	}

	t, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Current handles GET /api/tenants/current, resolving the tenant from
// the caller's token. SuperAdmin tokens have no tenant.
func (h *TenantHandler) Current(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == uuid.Nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Caller has no tenant"})
		return
	}

	t, err := h.tenants.Get(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Create handles POST /api/tenants
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	t, err := h.tenants.Create(r.Context(), tenantInput(req))
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrDuplicateTenant):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Tenant name or domain already exists"})
		case errors.Is(err, tenant.ErrMissingFields):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// Update handles PUT /api/tenants/{id}
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tenant id"})
		return
	}

	var req dto.TenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	t, err := h.tenants.Update(r.Context(), id, tenantInput(req))
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
		case errors.Is(err, tenant.ErrDuplicateTenant):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Tenant name or domain already exists"})
		case errors.Is(err, tenant.ErrMissingFields):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, t)
}
