package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Brodino96/TasteTracker/internal/storage"
)

// Storage implements storage.Storage and storage.Reader with an in-memory
// map. Objects are lost on restart.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]*storage.Object
	baseURL string
	maxSize int64
}

// New creates an in-memory storage whose URLs live under baseURL/media/.
// Uploads larger than maxSize bytes are rejected; zero means no limit.
func New(baseURL string, maxSize int64) *Storage {
	return &Storage{
		objects: make(map[string]*storage.Object),
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}
}

// Upload reads the object into memory and returns its public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if input.Key == "" {
		return nil, fmt.Errorf("upload: empty key")
	}

	r := input.Data
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", input.Key, err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("upload %s: exceeds %d bytes", input.Key, s.maxSize)
	}

	s.mu.Lock()
	s.objects[input.Key] = &storage.Object{
		Key:         input.Key,
		ContentType: input.ContentType,
		Data:        data,
	}
	s.mu.Unlock()

	return &storage.UploadResult{Key: input.Key, URL: s.url(input.Key)}, nil
}

// Delete removes an object.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		return fmt.Errorf("delete %s: %w", key, storage.ErrNotFound)
	}
	delete(s.objects, key)
	return nil
}

// GetURL returns the URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.objects[key]; !exists {
		return "", fmt.Errorf("get url %s: %w", key, storage.ErrNotFound)
	}
	return s.url(key), nil
}

// Open returns a copy of a stored object.
func (s *Storage) Open(_ context.Context, key string) (*storage.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, fmt.Errorf("open %s: %w", key, storage.ErrNotFound)
	}
	return &storage.Object{
		Key:         obj.Key,
		ContentType: obj.ContentType,
		Data:        bytes.Clone(obj.Data),
	}, nil
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *Storage) url(key string) string {
	return s.baseURL + "/media/" + key
}

var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Reader  = (*Storage)(nil)
)
