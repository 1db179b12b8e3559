// Package code validates account codes: the short, globally unique natural
// keys callers use to reference accounts.
package code

import (
	"regexp"
	"strings"
)

var reCode = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,15}$`)

// IsValid reports whether s is a well-formed account code: 1-16 characters,
// alphanumeric with '.', '_' or '-' after the first character.
func IsValid(s string) bool {
	return reCode.MatchString(s)
}

// Normalize trims surrounding whitespace. Codes are otherwise stored verbatim
// and compared case-sensitively.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}
