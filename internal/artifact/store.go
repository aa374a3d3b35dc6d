// Package artifact stores exported document renderings. The S3 store backs
// production; the memory store backs tests and offline sessions.
package artifact

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("artifact: not found")

// Store is the export artifact surface: objects are keyed by the owning
// document id plus an artifact name.
type Store interface {
	Put(ctx context.Context, documentID, name string, content []byte) error
	Get(ctx context.Context, documentID, name string) ([]byte, error)
	List(ctx context.Context, documentID string) ([]string, error)
}
