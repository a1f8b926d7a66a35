package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/contextiq/contextiq-cli/internal/utils"
	"github.com/patrickmn/go-cache"
)

// Storage is durable string key/value storage for credentials.
type Storage interface {
	Get(key string) (string, bool)
	// SetAll writes every pair in one step: either all land or none do.
	SetAll(values map[string]string) error
	Delete(keys ...string) error
}

// FileStorage keeps the values in a single JSON file written atomically.
type FileStorage struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenFileStorage loads path if it exists. A missing file is an empty
// store; a corrupt one is also treated as empty and overwritten on the
// next write.
func OpenFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{path: path, values: map[string]string{}}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var values map[string]string
	if err := json.Unmarshal(b, &values); err == nil && values != nil {
		s.values = values
	}
	return s, nil
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStorage) SetAll(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]string, len(s.values)+len(values))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	if err := s.flush(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStorage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]string, len(s.values))
	for k, v := range s.values {
		next[k] = v
	}
	for _, k := range keys {
		delete(next, k)
	}
	// in-memory state follows the request even if the write fails
	s.values = next
	return s.flush(next)
}

func (s *FileStorage) flush(values map[string]string) error {
	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(values)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path, data, 0o600)
}

// MemoryStorage is a Storage that lives only as long as the process. It
// backs tests and runs where the state directory is unusable.
type MemoryStorage struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.cache.Get(key); ok {
		return v.(string), true
	}
	return "", false
}

func (m *MemoryStorage) SetAll(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.cache.Set(k, v, cache.NoExpiration)
	}
	return nil
}

func (m *MemoryStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.cache.Delete(k)
	}
	return nil
}
