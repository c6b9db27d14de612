package core

import "github.com/oklog/ulid/v2"

// NewHandleID generates a unique identifier for a created primitive.
// Handle IDs appear in diagnostics and metrics labels; they carry no
// ordering or ownership meaning.
func NewHandleID() string {
	return ulid.Make().String()
}
