// Package redact scrubs sensitive fragments from strings before they are
// logged or echoed back in error responses: connection strings, credentials,
// JWT tokens, email addresses, and raw SQL.
package redact

import (
	"regexp"
)

// RedactionPlaceholder replaces matched sensitive fragments.
const RedactionPlaceholder = "[REDACTED]"

var (
	dbConnRegex   = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`)
	secretRegex   = regexp.MustCompile(`(?i)(secret|api[_-]?key|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)
	jwtRegex      = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
	emailRegex    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	sqlRegex      = regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[\s\w,*()."$=]+\b(FROM|INTO|SET)\b[\s\w,*()."'$=]*`)

	patterns = map[*regexp.Regexp]string{
		dbConnRegex:   "[REDACTED_CREDENTIAL]",
		passwordRegex: "[REDACTED_CREDENTIAL]",
		secretRegex:   "[REDACTED_KEY]",
		jwtRegex:      "[REDACTED_JWT]",
		emailRegex:    "[REDACTED_EMAIL]",
		sqlRegex:      "[REDACTED_SQL]",
	}
)

// String scrubs every known sensitive pattern from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for re, placeholder := range patterns {
		s = re.ReplaceAllString(s, placeholder)
	}
	return s
}

// Error scrubs err's message. Returns an empty string for nil errors.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
