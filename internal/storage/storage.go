// Package storage writes attachment blobs to an object store.
package storage

import (
	"context"
	"io"
)

// ObjectStore stores one blob per key and returns a URL that resolves to it.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Ping(ctx context.Context) error
}
