package domain

import (
	"regexp"
	"strings"
)

var icaoRe = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// ValidateICAO trims and uppercases code and checks that it is exactly four
// alphanumeric characters. It is the only gate before any upstream call.
func ValidateICAO(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", &ValidationError{Field: "ICAO code", Reason: "code is required"}
	}
	if !icaoRe.MatchString(normalized) {
		return "", &ValidationError{Field: "ICAO code", Value: code, Reason: "must be exactly 4 alphanumeric characters"}
	}
	return normalized, nil
}
