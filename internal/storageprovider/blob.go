package storageprovider

import (
	"context"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/methodlens/methodlens/internal/storageutil"
)

// Blob implements storageutil.ObjectHandler on top of a gocloud blob
// bucket. fileblob backs the on-disk snapshot directory; memblob is used in
// tests.
type Blob struct {
	Bucket *blob.Bucket
}

// Put writes an object to the bucket with name being the path.
func (b *Blob) Put(ctx context.Context, name string) (io.WriteCloser, error) {
	return b.Bucket.NewWriter(ctx, name, nil)
}

// Get reads an object from the bucket with name being the path.
// If the key was not found, it returns ErrObjectNotFound.
func (b *Blob) Get(ctx context.Context, name string) (storageutil.ReadSizeCloser, error) {
	r, err := b.Bucket.NewReader(ctx, name, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, storageutil.ErrObjectNotFound
		}
		return nil, err
	}
	return r, nil
}

// List returns the names of objects starting with prefix.
func (b *Blob) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	iter := b.Bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Delete removes an object from the bucket.
func (b *Blob) Delete(ctx context.Context, name string) error {
	err := b.Bucket.Delete(ctx, name)
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return storageutil.ErrObjectNotFound
	}
	return err
}
