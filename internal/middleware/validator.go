package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

var (
	tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	userPattern   = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{1,64}$`)
	typePattern   = regexp.MustCompile(`^[a-z0-9_-]{1,128}$`)
)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateUserID validates the identity header / path value
func ValidateUserID(user string) error {
	if user == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if !userPattern.MatchString(user) {
		return fmt.Errorf("invalid user ID format (alphanumeric, dash, underscore, dot, @ only, max 64 chars)")
	}
	return nil
}

// ValidateAssessmentType accepts already-sanitized type names only
func ValidateAssessmentType(t string) error {
	if !typePattern.MatchString(t) {
		return fmt.Errorf("invalid assessment type %q", t)
	}
	return nil
}

// ValidateRecordID validates stored assessment IDs (UUID)
func ValidateRecordID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid assessment ID format")
	}
	return nil
}

// SanitizeString removes null bytes and control characters
func SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// TruncateString cuts s to at most n bytes without splitting a rune
func TruncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
