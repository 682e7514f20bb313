package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/api/dto"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/role"
)

type RoleHandler struct {
	roles *role.Service
}

func NewRoleHandler(roles *role.Service) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// List handles GET /api/roles. Tenant admins see the global roles plus
// their own; SuperAdmins see everything.
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	var scope *uuid.UUID
	if tenantID := middleware.GetTenantID(r.Context()); tenantID != uuid.Nil {
		scope = &tenantID
	}

	roles, err := h.roles.List(r.Context(), scope)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, roles)
}

// Create handles POST /api/roles, adding a role scoped to the caller's
// tenant.
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Roles are tenant-scoped; caller has no tenant"})
		return
	}

	var req dto.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	created, err := h.roles.Create(r.Context(), req.Name, tenantID)
	if err != nil {
		switch {
		case errors.Is(err, role.ErrMissingName):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Role name is required"})
		case errors.Is(err, role.ErrDuplicateRole):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Role already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
