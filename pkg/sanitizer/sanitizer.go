// Package sanitizer normalizes untrusted user input before it reaches
// validation or storage.
package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail prevents common email input errors but preserves the
// original value for invalid formats. Consecutive dots in the local part
// are consolidated since they can cause delivery issues.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	domain := parts[1]

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// NormalizeUsername trims surrounding whitespace and lowercases the
// username so lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// TrimText collapses surrounding whitespace on free-form profile fields.
func TrimText(s string) string {
	return strings.TrimSpace(s)
}
