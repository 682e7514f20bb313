package onboarding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hravenhq/hraven/internal/provisioning"
	"github.com/hravenhq/hraven/internal/tasks"
	"github.com/hravenhq/hraven/internal/tenant"
)

var (
	ErrInvalidStep  = errors.New("step out of range")
	ErrInvalidTheme = errors.New("unknown theme")
)

// Service ties the wizard to storage: resuming saved progress,
// persisting drafts, and applying the finished draft to the tenant.
type Service struct {
	store   ProgressStore
	users   *provisioning.Service
	tenants *tenant.Service
	queue   *asynq.Client // nil disables invite mail
	logger  *slog.Logger
}

func NewService(store ProgressStore, users *provisioning.Service, tenants *tenant.Service, queue *asynq.Client, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		users:   users,
		tenants: tenants,
		queue:   queue,
		logger:  logger,
	}
}

// Resume returns the user's wizard: saved progress when present
// (restored in full, overriding any prefill), otherwise a fresh wizard
// prefilled from the registration record.
func (s *Service) Resume(ctx context.Context, userID uuid.UUID) (Wizard, error) {
	w, err := s.store.Load(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrNoProgress) {
		return Wizard{}, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Wizard{}, err
	}

	domain := ""
	if user.Tenant != nil {
		domain = user.Tenant.Domain
	}
	return Prefill(user.Company, domain), nil
}

// SaveProgress persists the wizard state. Idempotent; callable from any
// step.
func (s *Service) SaveProgress(ctx context.Context, userID uuid.UUID, w Wizard) error {
	if !w.Step.Valid() {
		return ErrInvalidStep
	}
	if w.Draft.Theme != "" && !ValidTheme(w.Draft.Theme) {
		return ErrInvalidTheme
	}
	return s.store.Save(ctx, userID, w)
}

// Clear drops saved progress without finishing.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.store.Clear(ctx, userID)
}

// Finish completes onboarding: applies the draft to the user's tenant
// (website, theme, logo), queues invites for the collected admin
// emails, marks the user onboarded, and clears saved progress
// unconditionally.
func (s *Service) Finish(ctx context.Context, userID uuid.UUID, w Wizard) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.Tenant != nil {
		tn := user.Tenant
		if w.Draft.LogoURL != "" {
			if _, err := s.tenants.SetLogoURL(ctx, tn.ID, w.Draft.LogoURL); err != nil {
				s.logger.Error("failed to store logo url", "tenant_id", tn.ID, "error", err)
			}
		}
		if ValidTheme(w.Draft.Theme) {
			if err := s.tenants.SetTheme(ctx, tn.ID, w.Draft.Theme); err != nil {
				s.logger.Error("failed to store theme", "tenant_id", tn.ID, "error", err)
			}
		}

		if s.queue != nil {
			for _, email := range w.Draft.AdminEmails {
				task, terr := tasks.NewInviteEmailTask(tasks.InviteEmailPayload{
					TenantID:   tn.ID,
					TenantName: tn.Name,
					Email:      email,
				})
				if terr != nil {
					continue
				}
				if _, qerr := s.queue.EnqueueContext(ctx, task); qerr != nil {
					s.logger.Error("failed to enqueue invite", "email", email, "error", qerr)
				}
			}
		}
	}

	if err := s.users.CompleteOnboarding(ctx, userID); err != nil {
		return err
	}

	// Progress is cleared even when draft application partially failed;
	// the wizard never resumes after finish.
	if err := s.store.Clear(ctx, userID); err != nil {
		s.logger.Error("failed to clear progress", "user_id", userID, "error", err)
	}

	s.logger.Info("onboarding finished", "user_id", userID)
	return nil
}
