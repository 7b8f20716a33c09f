package types

import (
	"errors"
	"sort"
	"strings"
)

// Inventory operation errors.
var (
	// ErrNotFound is returned when a record is missing from both sources on
	// lookup, or missing from the local collection on update.
	ErrNotFound = errors.New("book not found")

	// ErrRemoteUnavailable wraps network and API failures of the remote
	// collection. Listing absorbs it; lookups of non-local ids surface it.
	ErrRemoteUnavailable = errors.New("remote collection unavailable")

	// ErrPersistence wraps failures to read or write the local collection.
	ErrPersistence = errors.New("local collection persistence failed")

	// ErrInvalidID is returned for an empty id.
	ErrInvalidID = errors.New("invalid book id")
)

// ValidationErrors maps a field name to a human readable message. An empty
// map means the candidate is valid.
type ValidationErrors map[string]string

// Error lists the failing fields in key order.
func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
