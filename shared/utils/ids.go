package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewId returns a random identifier for users, threads, contents and notices.
func NewId() string {
	return uuid.NewString()
}

// IsId reports whether s looks like an identifier produced by NewId.
func IsId(s string) bool {
	return uuid.Validate(s) == nil
}

// NormalizeEmail lower-cases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
