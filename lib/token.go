package lib

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// GenerateToken returns a fresh single-use token for email verification or password reset
func GenerateToken() string {
	return uuid.NewString()
}

// IsValidToken reports whether token is shaped like one produced by GenerateToken.
// Malformed tokens are rejected before any store lookup.
func IsValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// GenerateCSRFToken generates a cryptographically secure random token
func GenerateCSRFToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
