// Package normalize provides canonical forms for user-supplied values.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email returns the comparison key for an email address: trimmed, NFC
// normalized and lowercased. Two addresses that differ only in case map to
// the same key.
func Email(email string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(email)))
}

// Text trims surrounding whitespace and NFC-normalizes free text such as
// titles and author names.
func Text(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
