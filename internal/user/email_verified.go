package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/bruhsty/bruhsty/persistence"
)

// EmailVerifiedEventType is the event type identifier.
const EmailVerifiedEventType = "EmailVerified"

// EmailVerified represents when a user confirmed an email address with a valid code.
type EmailVerified struct {
	UserID     int64
	Email      string
	CodeID     uuid.UUID
	OccurredAt time.Time
}

// BuildEmailVerified creates a new EmailVerified event.
func BuildEmailVerified(userID int64, email string, codeID uuid.UUID, occurredAt time.Time) EmailVerified {
	return EmailVerified{
		UserID:     userID,
		Email:      email,
		CodeID:     codeID,
		OccurredAt: persistence.ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e EmailVerified) IsEventType() string {
	return EmailVerifiedEventType
}

// HasOccurredAt returns when this event occurred.
func (e EmailVerified) HasOccurredAt() time.Time {
	return e.OccurredAt
}
