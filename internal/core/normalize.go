package core

// normalize.go canonicalizes the store fields used for identity comparison.
//
// Both functions are pure and never fail: a store with no street address gets
// the empty normalization key, a store with neither timestamp gets the zero
// recency key and therefore sorts behind every dated record.

import (
	"strings"
	"time"
)

// AddressKey returns the normalization key used to compare store locations:
// the lowercase, whitespace-trimmed street address.
func AddressKey(s Store) string {
	return strings.ToLower(strings.TrimSpace(s.StreetAddress))
}

// RecencyKey returns the later of UpdatedAt and CreatedAt. A nil timestamp is
// treated as oldest; a record with both nil returns the zero time.
func RecencyKey(s Store) time.Time {
	var key time.Time
	if s.CreatedAt != nil {
		key = *s.CreatedAt
	}
	if s.UpdatedAt != nil && s.UpdatedAt.After(key) {
		key = *s.UpdatedAt
	}
	return key
}
