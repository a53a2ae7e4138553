package texttopdf

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the object operations the converter needs from a single bucket
type BlobStore interface {
	// Download returns the object content; ErrObjectNotFound when the key is absent
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// UploadWithParams writes the object, replacing any existing one
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// Delete removes an object
	Delete(ctx context.Context, objectKey string) error
}

// Buckets resolves the BlobStore for a named bucket.
// Implementations must be safe for concurrent use.
type Buckets interface {
	Bucket(ctx context.Context, name string) (BlobStore, error)
}

// BucketsFunc adapts a function to the Buckets interface
type BucketsFunc func(ctx context.Context, name string) (BlobStore, error)

// Bucket calls f(ctx, name)
func (f BucketsFunc) Bucket(ctx context.Context, name string) (BlobStore, error) {
	return f(ctx, name)
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey     string
	MimeType      string
	ContentLength int64
}
