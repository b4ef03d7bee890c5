package validation

import (
	"errors"
	"strings"
)

var (
	ErrPasswordTooShort  = errors.New("password must be at least 12 characters")
	ErrPasswordTooLong   = errors.New("password must not exceed 72 bytes")
	ErrPasswordTooCommon = errors.New("password is too common, please choose a stronger one")
)

var commonPasswordParts = []string{
	"senha", "password", "123456", "qwerty", "admin",
	"briefing", "abcdef", "mudar", "trocar",
}

// ValidatePassword checks a dashboard password before it is hashed.
// bcrypt ignores everything past 72 bytes.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return ErrPasswordTooShort
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}

	lower := strings.ToLower(password)
	for _, part := range commonPasswordParts {
		if strings.Contains(lower, part) {
			return ErrPasswordTooCommon
		}
	}

	return nil
}
