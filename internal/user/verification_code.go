package user

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CodeTTL is how long a verification code stays valid after it was issued.
const CodeTTL = 30 * time.Minute

// VerificationCode is a one-time code sent to an email address.
type VerificationCode struct {
	ID           uuid.UUID  `json:"id"`
	Value        string     `json:"value"`
	ValidUntil   time.Time  `json:"valid_until"`
	ReplacedWith *uuid.UUID `json:"replaced_with,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewVerificationCode creates a code with value that expires CodeTTL after now.
func NewVerificationCode(value string, now time.Time) (*VerificationCode, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	return &VerificationCode{
		ID:         id,
		Value:      value,
		ValidUntil: now.Add(CodeTTL),
		CreatedAt:  now,
	}, nil
}

// Replaced reports whether a newer code superseded c.
func (c *VerificationCode) Replaced() bool {
	return c.ReplacedWith != nil
}

// Used reports whether c confirmed its email address.
func (c *VerificationCode) Used() bool {
	return c.UsedAt != nil
}

// Replace marks c as superseded by next.
func (c *VerificationCode) Replace(next *VerificationCode) error {
	if c.Replaced() {
		return fmt.Errorf("%w: %s replaced with %s", ErrCodeAlreadyReplaced, c.ID, *c.ReplacedWith)
	}

	id := next.ID
	c.ReplacedWith = &id

	return nil
}

// ActiveAt reports whether c can still confirm its email address at now.
func (c *VerificationCode) ActiveAt(now time.Time) bool {
	return !c.Used() && !c.Replaced() && !now.After(c.ValidUntil)
}

// GenerateCode returns a random four digit code.
func GenerateCode() (string, error) {
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}

	return fmt.Sprintf("%04d", binary.BigEndian.Uint32(raw[:])%10000), nil
}
