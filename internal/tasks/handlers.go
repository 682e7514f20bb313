package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hravenhq/hraven/internal/mailer"
	"gorm.io/gorm"
)

// sweepGrace is how long a blob may sit unreferenced before the sweep
// removes it. Fresh uploads are unreferenced until the owning row is
// committed, so we never touch anything younger than this.
const sweepGrace = time.Hour

type Handler struct {
	db        *gorm.DB
	logger    *slog.Logger
	mailer    mailer.Mailer
	uploadDir string
	now       func() time.Time
}

func NewHandler(db *gorm.DB, logger *slog.Logger, m mailer.Mailer, uploadDir string) *Handler {
	return &Handler{
		db:        db,
		logger:    logger,
		mailer:    m,
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOTPEmail, h.HandleOTPEmail)
	mux.HandleFunc(TypeInviteEmail, h.HandleInviteEmail)
	mux.HandleFunc(TypeBlobSweep, h.HandleBlobSweep)
}

func (h *Handler) HandleOTPEmail(ctx context.Context, t *asynq.Task) error {
	var payload OTPEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("sending OTP email", "user_id", payload.UserID, "email", payload.Email)

	body := fmt.Sprintf(
		"Your HRaven verification code is %s.\n\nIt expires shortly. If you did not request it, ignore this message.\n",
		payload.Code,
	)
	if err := h.mailer.Send(payload.Email, "Your HRaven verification code", body); err != nil {
		h.logger.Error("OTP email delivery failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("sent OTP email", "user_id", payload.UserID)
	return nil
}

func (h *Handler) HandleInviteEmail(ctx context.Context, t *asynq.Task) error {
	var payload InviteEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("sending admin invite", "tenant_id", payload.TenantID, "email", payload.Email)

	body := fmt.Sprintf(
		"You have been invited to administer %s on HRaven.\n\nSign in with this address to accept the invitation.\n",
		payload.TenantName,
	)
	if err := h.mailer.Send(payload.Email, fmt.Sprintf("Invitation to %s on HRaven", payload.TenantName), body); err != nil {
		h.logger.Error("invite email delivery failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("sent admin invite", "tenant_id", payload.TenantID, "email", payload.Email)
	return nil
}

// HandleBlobSweep walks the upload root and removes files no user
// avatar and no tenant logo points at anymore.
func (h *Handler) HandleBlobSweep(ctx context.Context, t *asynq.Task) error {
	h.logger.Info("starting blob sweep", "dir", h.uploadDir)

	referenced, err := h.referencedBlobs()
	if err != nil {
		return fmt.Errorf("loading blob references: %w", err)
	}

	cutoff := h.now().Add(-sweepGrace)
	var scanned, removed int

	err = filepath.WalkDir(h.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		scanned++

		rel, err := filepath.Rel(h.uploadDir, path)
		if err != nil {
			return err
		}
		url := "/uploads/" + filepath.ToSlash(rel)
		if referenced[url] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			h.logger.Error("failed to remove orphaned blob", "path", path, "error", err)
			return nil
		}
		removed++
		h.logger.Info("removed orphaned blob", "url", url)
		return nil
	})
	if err != nil {
		return fmt.Errorf("sweeping %s: %w", h.uploadDir, err)
	}

	h.logger.Info("completed blob sweep", "scanned", scanned, "removed", removed)
	return nil
}

// referencedBlobs collects every blob URL still pointed at by a live
// row. Soft-deleted rows keep their blobs until the row is purged.
func (h *Handler) referencedBlobs() (map[string]bool, error) {
	var avatars []string
	if err := h.db.Table("users").Where("avatar_url <> ''").Pluck("avatar_url", &avatars).Error; err != nil {
		return nil, err
	}

	var logos []string
	if err := h.db.Table("tenants").Where("logo_url <> ''").Pluck("logo_url", &logos).Error; err != nil {
		return nil, err
	}

	refs := make(map[string]bool, len(avatars)+len(logos))
	for _, u := range avatars {
		refs[u] = true
	}
	for _, u := range logos {
		refs[u] = true
	}
	return refs, nil
}
