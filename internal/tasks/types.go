package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeOTPEmail    = "email:otp"
	TypeInviteEmail = "email:admin_invite"
	TypeBlobSweep   = "blob:sweep"
)

// OTPEmailPayload carries a freshly issued verification code to the
// worker. The code is in the clear here; only the hash is stored.
type OTPEmailPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Code   string    `json:"code"`
}

func NewOTPEmailTask(payload OTPEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOTPEmail, data, asynq.Queue("critical")), nil
}

// InviteEmailPayload invites an additional admin collected during
// onboarding to the tenant.
type InviteEmailPayload struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Email      string    `json:"email"`
}

func NewInviteEmailTask(payload InviteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInviteEmail, data), nil
}

// BlobSweepPayload is empty - the sweep scans the whole upload root.
type BlobSweepPayload struct{}

func NewBlobSweepTask() *asynq.Task {
	return asynq.NewTask(TypeBlobSweep, nil, asynq.Queue("low"))
}
