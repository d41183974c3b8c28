package repository

import "github.com/oklog/ulid/v2"

// NewID returns a new sortable document identifier.
func NewID() string {
	return ulid.Make().String()
}

// ValidID reports whether s could have been produced by NewID.
// Backends use it to answer malformed ids with ErrNotFound without a round trip.
func ValidID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
