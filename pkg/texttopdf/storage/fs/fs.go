package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/tendant/texttopdf/pkg/texttopdf"
)

// Config options for the filesystem backend
type Config struct {
	BaseDir       string // Base directory; each bucket is a subdirectory
	CreateBuckets bool   // Create bucket directories on first use
}

// Buckets maps bucket names to subdirectories of a base directory
type Buckets struct {
	mu            sync.Mutex
	baseDir       string
	createBuckets bool
	backends      map[string]*Backend
}

// New creates a new filesystem storage root
func New(config Config) (*Buckets, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Buckets{
		baseDir:       config.BaseDir,
		createBuckets: config.CreateBuckets,
		backends:      make(map[string]*Backend),
	}, nil
}

// Bucket implements texttopdf.Buckets
func (bs *Buckets) Bucket(ctx context.Context, name string) (texttopdf.BlobStore, error) {
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid bucket name %q", name)
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	if backend, ok := bs.backends[name]; ok {
		return backend, nil
	}

	dir := filepath.Join(bs.baseDir, name)
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
	case err == nil:
		return nil, fmt.Errorf("bucket path %s is not a directory", dir)
	case os.IsNotExist(err) && bs.createBuckets:
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create bucket directory: %w", err)
		}
	case os.IsNotExist(err):
		return nil, texttopdf.ErrBucketNotFound
	default:
		return nil, fmt.Errorf("failed to stat bucket directory: %w", err)
	}

	backend := &Backend{dir: dir}
	bs.backends[name] = backend
	return backend, nil
}

// Backend is a filesystem implementation of the texttopdf.BlobStore interface
type Backend struct {
	mu  sync.RWMutex
	dir string
}

func (b *Backend) path(objectKey string) (string, error) {
	if !filepath.IsLocal(objectKey) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(b.dir, objectKey), nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*texttopdf.ObjectMeta, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, texttopdf.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return &texttopdf.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: detectContentType(filePath),
		UpdatedAt:   info.ModTime(),
	}, nil
}

// detectContentType prefers the extension and falls back to sniffing
func detectContentType(filePath string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(filePath)); contentType != "" {
		return contentType
	}

	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}
	return contentType
}

// UploadWithParams writes content to a temporary file and renames it over
// the destination, so readers never see a partial object. The MIME type is
// not stored; it is derived from the key on read.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params texttopdf.UploadParams) error {
	filePath, err := b.path(params.ObjectKey)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Download opens the object for reading
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, texttopdf.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return texttopdf.ErrObjectNotFound
	} else if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
