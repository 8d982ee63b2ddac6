package pager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/golang-lru/arc/v2"
)

type (
	// Store holds paged blocks by key.
	// Implementations must return an error wrapping
	// [ErrNotFound] from Load when a key holds nothing.
	Store interface {
		Load(ctx context.Context, key string) ([]byte, error)
		Save(ctx context.Context, key string, data []byte) error
		Delete(ctx context.Context, key string) error
	}
	// MemoryStore is a [Store] kept entirely in memory.
	// It is safe for concurrent use.
	MemoryStore struct {
		mu    sync.RWMutex
		blobs map[string][]byte
	}
	// FileStore is a [Store] that keeps one file per key
	// beneath a root directory.
	FileStore struct {
		root string
	}
	// CachingStore is a read-through [Store] that keeps
	// recently loaded data in an adaptive replacement cache.
	// Saves and deletes invalidate the cached entry.
	CachingStore struct {
		inner Store
		cache *arc.ARCCache[string, []byte]
	}
)

const fileSuffix = ".block"

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return clone(data), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = clone(data)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Len returns the number of keys held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// NewFileStore returns a [FileStore] rooted at root,
// creating the directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Save writes data to a temporary file and renames it
// over the key's file, so readers never see a partial block.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		filepath.Base(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, key+fileSuffix), nil
}

// NewCachingStore wraps inner with a cache of up to size entries.
func NewCachingStore(inner Store, size int) (*CachingStore, error) {
	cache, err := arc.NewARC[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachingStore{
		inner: inner,
		cache: cache,
	}, nil
}

func (s *CachingStore) Load(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return clone(data), nil
	}
	data, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, clone(data))
	return data, nil
}

func (s *CachingStore) Save(ctx context.Context, key string, data []byte) error {
	s.cache.Remove(key)
	return s.inner.Save(ctx, key, data)
}

func (s *CachingStore) Delete(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return s.inner.Delete(ctx, key)
}

// Cached reports whether key is currently held by the cache.
func (s *CachingStore) Cached(key string) bool {
	return s.cache.Contains(key)
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
