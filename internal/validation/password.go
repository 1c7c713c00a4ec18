package validation

import (
	"errors"
	"strings"
)

const (
	PasswordMinLength = 8
	// bcrypt silently truncates input beyond 72 bytes
	PasswordMaxLength = 72
)

// ValidatePassword validates password strength: length bounds plus a
// blocklist of the most common patterns.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > PasswordMaxLength {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "123456", "qwerty", "letmein",
		"welcome", "monkey", "dragon", "sunshine",
	}

	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
