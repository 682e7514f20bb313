package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hravenhq/hraven/internal/api/dto"
	"github.com/hravenhq/hraven/internal/provisioning"
)

// RegisterHandler drives self-service signup: intake plus OTP
// verification.
type RegisterHandler struct {
	users *provisioning.Service
}

func NewRegisterHandler(users *provisioning.Service) *RegisterHandler {
	return &RegisterHandler{users: users}
}

func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req provisioning.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		var verr *provisioning.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: verr.Fields,
				First:   verr.First,
			})
		case errors.Is(err, provisioning.ErrUserExists):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *RegisterHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, provisioning.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	verified, err := h.users.VerifyOTP(r.Context(), user.ID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, provisioning.ErrNoChallenge):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No active verification code"})
		case errors.Is(err, provisioning.ErrOTPExpired):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Verification code has expired"})
		case errors.Is(err, provisioning.ErrInvalidOTP):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid verification code"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, verified)
}
