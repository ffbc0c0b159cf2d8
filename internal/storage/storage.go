package storage

import (
	"context"
	"io"
)

// BlobStore abstracts the managed object-storage backend. Durability and
// consistency are the backend's responsibility; callers only track the
// returned storage keys.
type BlobStore interface {
	// Put uploads an object and returns nothing; the caller chooses the key.
	Put(ctx context.Context, key, contentType string, body io.Reader) error

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL for an object.
	PresignGet(ctx context.Context, key string) (string, error)
}
