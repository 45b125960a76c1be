// Package uuid issues the identifiers used for records and requests.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string, falling back to a random UUIDv4
// if the clock-based generator fails. IDs from one process sort in the
// order they were issued.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// Canonical reports whether s is a UUID in any of the accepted spellings
// and returns its lowercase hyphenated form.
func Canonical(s string) (string, bool) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
