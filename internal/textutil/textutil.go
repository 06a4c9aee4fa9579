package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize puts observed text in NFC form and trims surrounding space.
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// TrimColon drops a trailing label colon, as in "Name:".
func TrimColon(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ":：")
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
