package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hravenhq/hraven/internal/api/dto"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/onboarding"
	"github.com/hravenhq/hraven/internal/provisioning"
)

type OnboardingHandler struct {
	wizard *onboarding.Service
}

func NewOnboardingHandler(wizard *onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{wizard: wizard}
}

// GetProgress handles GET /api/onboarding/progress: saved progress when
// present, otherwise a fresh wizard prefilled from registration data.
func (h *OnboardingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	wizard, err := h.wizard.Resume(r.Context(), userID)
	if err != nil {
		if errors.Is(err, provisioning.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, wizard)
}

// SaveProgress handles PUT /api/onboarding/progress.
func (h *OnboardingHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var wizard onboarding.Wizard
	if err := json.NewDecoder(r.Body).Decode(&wizard); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.wizard.SaveProgress(r.Context(), userID, wizard); err != nil {
		switch {
		case errors.Is(err, onboarding.ErrInvalidStep):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Step out of range"})
		case errors.Is(err, onboarding.ErrInvalidTheme):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown theme"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Progress saved"})
}

// ClearProgress handles DELETE /api/onboarding/progress.
func (h *OnboardingHandler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.wizard.Clear(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Progress cleared"})
}

// Finish handles POST /api/onboarding/finish: applies the submitted
// draft to the tenant, queues admin invites, and marks the user
// onboarded.
func (h *OnboardingHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var wizard onboarding.Wizard
	if err := json.NewDecoder(r.Body).Decode(&wizard); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.wizard.Finish(r.Context(), userID, wizard); err != nil {
		if errors.Is(err, provisioning.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Onboarding completed"})
}
