package storage

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

// ErrNotFound is returned for keys that hold no object.
var ErrNotFound = errors.New("object not found")

// Storage defines the interface for image storage operations.
type Storage interface {
	// Upload stores an object and returns its key and public URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes an object by its key.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for the given key.
	GetURL(ctx context.Context, key string) (string, error)
}

// Reader is implemented by storages that can serve their objects back.
type Reader interface {
	Open(ctx context.Context, key string) (*Object, error)
}

// UploadInput holds the parameters for uploading an object.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}

// Object is a stored object's content.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// NewKey builds "<prefix>/<uuid>.<ext>".
func NewKey(prefix, ext string) string {
	return prefix + "/" + uuid.New().String() + "." + ext
}
