package api

import "regexp"

var (
	bearerPattern = regexp.MustCompile(`(?i)(Authorization: Bearer )\S+`)
	// JSON string fields that carry credentials in login, signup, reset
	// and session payloads.
	secretFieldPattern = regexp.MustCompile(`("(?:password|newPassword|token)"\s*:\s*)"(?:[^"\\]|\\.)*"`)
)

// redact masks bearer headers and credential fields in an HTTP dump.
func redact(dump string) string {
	dump = bearerPattern.ReplaceAllString(dump, "${1}[REDACTED]")
	return secretFieldPattern.ReplaceAllString(dump, `${1}"[REDACTED]"`)
}
