package user

import (
	"fmt"
	"slices"
	"time"

	"github.com/bruhsty/bruhsty/persistence"
)

// Logical field names of the user repository.
const (
	FieldID         = "id"
	FieldEmailCount = "email_count"
	FieldVerified   = "verified"
	FieldCreatedAt  = "created_at"
)

var (
	ID         = persistence.NewField[int64](FieldID)
	EmailCount = persistence.NewField[int64](FieldEmailCount)
	Verified   = persistence.NewField[bool](FieldVerified)
	CreatedAt  = persistence.NewField[time.Time](FieldCreatedAt)
)

// User is a Telegram account identified by its Telegram user id.
type User struct {
	persistence.Aggregate[int64]
	emails    []*Email
	createdAt time.Time
}

// New creates a user without emails.
func New(telegramID int64, now time.Time) *User {
	return &User{
		Aggregate: persistence.NewAggregate(telegramID),
		createdAt: now.UTC(),
	}
}

// Restore rebuilds a stored user. It records no events.
func Restore(telegramID int64, emails []*Email, createdAt time.Time) *User {
	return &User{
		Aggregate: persistence.NewAggregate(telegramID),
		emails:    emails,
		createdAt: createdAt,
	}
}

func (u *User) TelegramID() int64 {
	return u.AggregateID()
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// Emails returns the linked addresses in the order they were added.
func (u *User) Emails() []*Email {
	return slices.Clone(u.emails)
}

// Email returns the linked address. address must be normalized.
func (u *User) Email(address string) (*Email, bool) {
	for _, email := range u.emails {
		if email.Address == address {
			return email, true
		}
	}

	return nil, false
}

// Verified reports whether at least one linked address is verified.
func (u *User) Verified() bool {
	return slices.ContainsFunc(u.emails, (*Email).Verified)
}

// AddEmail links address and issues its first verification code.
// Adding an address that is already linked does nothing.
func (u *User) AddEmail(address, code string, now time.Time) error {
	address, err := NormalizeAddress(address)
	if err != nil {
		return err
	}

	if _, linked := u.Email(address); linked {
		return nil
	}

	u.emails = append(u.emails, &Email{Address: address})

	return u.IssueVerificationCode(address, code, now)
}

// RemoveEmail unlinks address. Removing an unknown address does nothing.
func (u *User) RemoveEmail(address string) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return
	}

	u.emails = slices.DeleteFunc(u.emails, func(e *Email) bool {
		return e.Address == address
	})
}

// IssueVerificationCode issues a new code for a linked address, replacing its active code.
func (u *User) IssueVerificationCode(address, value string, now time.Time) error {
	address, err := NormalizeAddress(address)
	if err != nil {
		return err
	}

	email, linked := u.Email(address)
	if !linked {
		return fmt.Errorf("%w: %s", ErrEmailNotLinked, address)
	}

	code, err := NewVerificationCode(value, now)
	if err != nil {
		return err
	}

	if active, ok := email.ActiveCode(now); ok {
		if err := active.Replace(code); err != nil {
			return err
		}
	}

	email.VerificationCodes = slices.Insert(email.VerificationCodes, 0, code)
	u.PushEvent(BuildVerificationCodeIssued(u.TelegramID(), address, code, now))

	return nil
}

// VerifyEmail confirms a linked address with the value of its active code.
func (u *User) VerifyEmail(address, value string, now time.Time) error {
	address, err := NormalizeAddress(address)
	if err != nil {
		return err
	}

	email, linked := u.Email(address)
	if !linked {
		return fmt.Errorf("%w: %s", ErrEmailNotLinked, address)
	}

	code, ok := email.ActiveCode(now)
	if !ok || code.Value != value {
		return ErrInvalidCode
	}

	usedAt := now
	code.UsedAt = &usedAt
	u.PushEvent(BuildEmailVerified(u.TelegramID(), address, code.ID, now))

	return nil
}
