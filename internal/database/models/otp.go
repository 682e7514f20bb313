package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPChallenge is the single active email-verification code for a user.
// Issuing a new code replaces the previous row; verification consumes
// the challenge exactly once.
type OTPChallenge struct {
	Base
	UserID     uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	CodeHash   string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (OTPChallenge) TableName() string {
	return "otp_challenges"
}

// Expired reports whether the challenge is past its expiry at the given
// instant.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
