package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("document not found")
)

// serverTimestamp is the sentinel type behind ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp marks a field whose value is assigned by the document store
// at write time rather than by this process. Backends resolve it to their own
// clock when the write lands.
var ServerTimestamp = serverTimestamp{}

// Store is the minimal document-store surface the gateway needs: merge-write,
// full-write and point read of schemaless documents addressed by
// collection name and document id.
type Store interface {
	// SetMerge updates only the given fields, creating the document when
	// absent and leaving unspecified existing fields untouched.
	SetMerge(ctx context.Context, collection, id string, fields map[string]any) error
	// Set writes the document as given, replacing any prior contents.
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	// Get returns the document's field mapping, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (map[string]any, error)
}
