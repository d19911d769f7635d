package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/bruhsty/bruhsty/persistence"
)

// VerificationCodeIssuedEventType is the event type identifier.
const VerificationCodeIssuedEventType = "VerificationCodeIssued"

// VerificationCodeIssued represents when a new verification code was issued for an email address.
type VerificationCodeIssued struct {
	UserID     int64
	Email      string
	CodeID     uuid.UUID
	Code       string
	ValidUntil time.Time
	OccurredAt time.Time
}

// BuildVerificationCodeIssued creates a new VerificationCodeIssued event.
func BuildVerificationCodeIssued(userID int64, email string, code *VerificationCode, occurredAt time.Time) VerificationCodeIssued {
	return VerificationCodeIssued{
		UserID:     userID,
		Email:      email,
		CodeID:     code.ID,
		Code:       code.Value,
		ValidUntil: code.ValidUntil,
		OccurredAt: persistence.ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e VerificationCodeIssued) IsEventType() string {
	return VerificationCodeIssuedEventType
}

// HasOccurredAt returns when this event occurred.
func (e VerificationCodeIssued) HasOccurredAt() time.Time {
	return e.OccurredAt
}
