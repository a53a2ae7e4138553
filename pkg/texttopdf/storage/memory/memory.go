package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/texttopdf/pkg/texttopdf"
)

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// Backend is an in-memory implementation of the texttopdf.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory bucket
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*texttopdf.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, texttopdf.ErrObjectNotFound
	}

	return &texttopdf.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Upload stores content with the default MIME type
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	return b.UploadWithParams(ctx, reader, texttopdf.UploadParams{ObjectKey: objectKey})
}

// UploadWithParams stores content, replacing any existing object
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params texttopdf.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = object{
		data:      data,
		mimeType:  mimeType,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, texttopdf.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return texttopdf.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	return nil
}

// Buckets is a set of named in-memory buckets
type Buckets struct {
	mu         sync.RWMutex
	buckets    map[string]*Backend
	autoCreate bool
}

// NewBuckets creates the named buckets. Unknown buckets are rejected with
// texttopdf.ErrBucketNotFound unless autoCreate is set.
func NewBuckets(autoCreate bool, names ...string) *Buckets {
	bs := &Buckets{
		buckets:    make(map[string]*Backend),
		autoCreate: autoCreate,
	}
	for _, name := range names {
		bs.buckets[name] = New()
	}
	return bs
}

// Bucket implements texttopdf.Buckets
func (bs *Buckets) Bucket(ctx context.Context, name string) (texttopdf.BlobStore, error) {
	bs.mu.RLock()
	backend, ok := bs.buckets[name]
	bs.mu.RUnlock()
	if ok {
		return backend, nil
	}

	if !bs.autoCreate {
		return nil, texttopdf.ErrBucketNotFound
	}
	return bs.Create(name), nil
}

// Create returns the named bucket, creating it when missing
func (bs *Buckets) Create(name string) *Backend {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if backend, ok := bs.buckets[name]; ok {
		return backend
	}
	backend := New()
	bs.buckets[name] = backend
	return backend
}
