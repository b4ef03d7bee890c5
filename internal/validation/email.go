package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail validates email format and length.
// Only used for operator-supplied addresses (admin allowlist); briefing
// contact emails are accepted as typed.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}

	// Reject "Name <addr>" forms, only bare addresses are allowed
	if addr.Address != email {
		return errors.New("invalid email address format")
	}

	return nil
}

// NormalizeEmail lowercases and trims an address for comparisons.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
