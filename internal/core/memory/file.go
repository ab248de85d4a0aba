package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/agenthands/finsage/internal/core/model"
)

// Container is the persisted layout: entity key to ordered entries.
type Container map[string][]model.MemoryEntry

// DefaultFilePath is the history file under the XDG data directory.
func DefaultFilePath() (string, error) {
	return xdg.DataFile(filepath.Join("finsage", "memory.json"))
}

// FileStore keeps the whole container in one JSON file. Writes go to a
// temporary file that is renamed over the original.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(ctx context.Context, key string, entry model.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return persistErr(OpAppend, key, err)
	}
	c[key] = append(c[key], entry)

	return persistErr(OpAppend, key, s.write(c))
}

func (s *FileStore) ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, persistErr(OpRead, key, err)
	}
	out := make([]model.MemoryEntry, len(c[key]))
	copy(out, c[key])
	return out, nil
}

func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

func (s *FileStore) load() (Container, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Container{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeContainer(data)
}

func (s *FileStore) write(c Container) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func decodeContainer(data []byte) (Container, error) {
	c := Container{}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("corrupt memory container: %w", err)
	}
	if c == nil {
		c = Container{}
	}
	return c, nil
}
