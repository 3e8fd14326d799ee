package storageutil

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

type ReadSizeCloser interface {
	io.Reader
	io.Closer
	Size() int64
}

// ObjectHandler provides a common interface for multiple storage providers.
type ObjectHandler interface {
	// Put writes an object to the storage provider with name being the path.
	Put(ctx context.Context, name string) (io.WriteCloser, error)
	// Get reads an object from the storage provider with name being the
	// path. If the object was not found, it returns ErrObjectNotFound.
	Get(ctx context.Context, name string) (ReadSizeCloser, error)
	// List returns the names of stored objects starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes an object. If the object was not found, it returns
	// ErrObjectNotFound.
	Delete(ctx context.Context, name string) error
}
