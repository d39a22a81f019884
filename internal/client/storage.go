package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is the durable backing for the client session, the counterpart of
// browser local storage
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileStorage persists the session as a JSON file
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed session storage
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the stored session. A missing file is not an error.
func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return data, nil
}

// Save writes the session file, creating the parent directory if needed.
// The file holds a bearer token, so it is private to the user.
func (s *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file
func (s *FileStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStorage keeps the session in memory only. Used by tests and by
// callers that do not want a session to outlive the process.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, nil
}

func (s *MemoryStorage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
