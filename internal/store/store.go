package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"chatbar/internal/config"
)

// Keys under which the sidebar keeps its blobs.
const (
	KeyConversations = "conversationHistory"
	KeyFolders       = "folders"
	KeySelected      = "selectedConversation"
)

var ErrNotFound = errors.New("key not found")

// KV is a flat key-value blob store. Values are opaque bytes; callers own the
// encoding. Implementations are not expected to merge concurrent writers.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open picks the backend named by cfg.Store, rooted at cfg.DataDir.
func Open(cfg config.Config) (KV, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreSQLite:
		return OpenSQLite(SQLitePath(cfg))
	case config.StoreDiskv, "":
		return OpenDiskv(filepath.Join(cfg.DataDir, "kv"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// SQLitePath is where the sqlite backend keeps its database.
func SQLitePath(cfg config.Config) string {
	return filepath.Join(cfg.DataDir, "state.db")
}

type memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemory returns a KV that lives only as long as the process.
func NewMemory() KV {
	return &memory{m: map[string][]byte{}}
}

func (s *memory) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memory) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memory) Close() error { return nil }
