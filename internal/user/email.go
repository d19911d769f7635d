package user

import (
	"net/mail"
	"strings"
	"time"
)

// Email is an address linked to a user, with its verification codes newest first.
type Email struct {
	Address           string              `json:"address"`
	VerificationCodes []*VerificationCode `json:"verification_codes"`
}

// Verified reports whether any code of the address was used.
func (e *Email) Verified() bool {
	for _, code := range e.VerificationCodes {
		if code.Used() {
			return true
		}
	}

	return false
}

// ActiveCode returns the newest code that is neither used, replaced nor expired at now.
func (e *Email) ActiveCode(now time.Time) (*VerificationCode, bool) {
	for _, code := range e.VerificationCodes {
		if code.ActiveAt(now) {
			return code, true
		}
	}

	return nil, false
}

// NormalizeAddress validates address and returns it trimmed and lower-cased.
func NormalizeAddress(address string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil || parsed.Name != "" {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(parsed.Address), nil
}
