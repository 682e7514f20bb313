package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/api/dto"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/blob"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/provisioning"
)

// maxUploadSize bounds multipart request memory.
const maxUploadSize = 10 << 20

type UserHandler struct {
	users *provisioning.Service
	blobs *blob.Store
}

func NewUserHandler(users *provisioning.Service, blobs *blob.Store) *UserHandler {
	return &UserHandler{users: users, blobs: blobs}
}

// CreatedUserResponse carries the one-time generated password next to
// the stored user. The plaintext is never persisted.
type CreatedUserResponse struct {
	*models.User
	GeneratedPassword string `json:"generatedPassword,omitempty"`
}

// List handles GET /api/users. SuperAdmins see all users; tenant
// admins see their own tenant. No pagination; clients filter the set.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var scope *uuid.UUID
	if tenantID := middleware.GetTenantID(r.Context()); tenantID != uuid.Nil {
		scope = &tenantID
	}
	includeTenants := r.URL.Query().Get("includeTenants") == "true"

	users, err := h.users.ListUsers(r.Context(), scope, includeTenants)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user id"})
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, provisioning.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /api/users. The body is multipart: the user
// fields plus an optional avatar, sent either as a file part or as an
// already-uploaded URL.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseUserForm(w, r, uuid.Nil)
	if !ok {
		return
	}

	user, generated, err := h.users.CreateUser(r.Context(), input)
	if err != nil {
		writeProvisioningError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreatedUserResponse{
		User:              user,
		GeneratedPassword: generated,
	})
}

// Update handles PUT /api/users/{id}. Email is immutable; a submitted
// email field is ignored.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user id"})
		return
	}

	existing, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, provisioning.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	avatarTenant := uuid.Nil
	if existing.TenantID != nil {
		avatarTenant = *existing.TenantID
	}

	input, ok := h.parseUserForm(w, r, avatarTenant)
	if !ok {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, input)
	if err != nil {
		writeProvisioningError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateStatus handles PUT /api/users/{id}/status. SuperAdmin users
// stay active regardless of the submitted flag.
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user id"})
		return
	}

	var req dto.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.users.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		writeProvisioningError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// parseUserForm reads the multipart user payload. avatarTenant is the
// tenant the avatar is stored under when the form's tenantId is absent
// (the update path). Writes the error response itself on failure.
func (h *UserHandler) parseUserForm(w http.ResponseWriter, r *http.Request, avatarTenant uuid.UUID) (provisioning.UserInput, bool) {
	var input provisioning.UserInput

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return input, false
	}

	if raw := r.FormValue("tenantId"); raw != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tenant id"})
			return input, false
		}
		input.TenantID = tenantID
		avatarTenant = tenantID
	}

	if raw := r.FormValue("roleId"); raw != "" {
		roleID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid role id"})
			return input, false
		}
		input.RoleID = roleID
	}

	input.FirstName = r.FormValue("firstName")
	input.LastName = r.FormValue("lastName")
	input.Email = r.FormValue("email")
	input.LocalEmail = r.FormValue("localEmail")
	input.Password = r.FormValue("password")
	input.MFAEnabled, _ = strconv.ParseBool(r.FormValue("mfaEnabled"))
	input.IsActive, _ = strconv.ParseBool(r.FormValue("isActive"))

	if raw := r.FormValue("mfaType"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.MFATypes); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "mfaType must be a JSON array"})
			return input, false
		}
	}

	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		url, err := h.blobs.Save(avatarTenant, blob.KindAvatar, file, header.Filename)
		if err != nil {
			writeBlobError(w, err)
			return input, false
		}
		input.AvatarURL = url
	case errors.Is(err, http.ErrMissingFile):
		// No file part; an avatar URL may still come as a plain field.
		input.AvatarURL = r.FormValue("avatar")
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid avatar upload"})
		return input, false
	}

	return input, true
}

func writeProvisioningError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provisioning.ErrMissingTenant),
		errors.Is(err, provisioning.ErrMissingEmail):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, provisioning.ErrUserExists):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
	case errors.Is(err, provisioning.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
	case errors.Is(err, provisioning.ErrTenantNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
	case errors.Is(err, provisioning.ErrRoleNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Role not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

func writeBlobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, blob.ErrUnsupportedMedia):
		writeJSON(w, http.StatusUnsupportedMediaType, dto.ErrorResponse{Error: "Only image files are allowed"})
	case errors.Is(err, blob.ErrEmptyFile):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No file uploaded"})
	case errors.Is(err, blob.ErrMissingTenant):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Tenant id is required"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
