package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// CorruptSuffix is appended to a storage file that could not be parsed when
// it is replaced.
const CorruptSuffix = ".corrupt"

// FileStorage keeps every key in one JSON object file.
//
// The file is read on every call so that edits by other processes are seen,
// and rewritten atomically (temp file + rename) on every mutation. Concurrent
// writers in other processes are not detected.
//
// A file that is not a JSON object of strings reads as an empty store and is
// logged. The next mutation moves it aside to path+CorruptSuffix before
// writing a fresh file. Other I/O failures are returned.
type FileStorage struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// OpenFile returns a FileStorage at path. The file is created on first write.
func OpenFile(path string, opts ...Option) (*FileStorage, error) {
	if path == "" {
		return nil, errors.New("storage file path is empty")
	}
	o := buildOptions(opts)
	return &FileStorage{path: path, logger: o.logger}, nil
}

// Path returns the backing file path.
func (s *FileStorage) Path() string {
	return s.path
}

// GetItem implements Storage.
func (s *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

// SetItem implements Storage.
func (s *FileStorage) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, damaged, err := s.read()
	if err != nil {
		return err
	}
	if err := s.quarantine(damaged); err != nil {
		return err
	}
	items[key] = value
	return s.write(items)
}

// RemoveItem implements Storage.
func (s *FileStorage) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, damaged, err := s.read()
	if err != nil {
		return err
	}
	if !damaged {
		if _, ok := items[key]; !ok {
			return nil
		}
	}
	if err := s.quarantine(damaged); err != nil {
		return err
	}
	delete(items, key)
	return s.write(items)
}

// Close implements Storage.
func (s *FileStorage) Close() error {
	return nil
}

// Check reports whether the file on disk parses. A missing file is fine.
func (s *FileStorage) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read storage file: %w", err)
	}
	_, err = parseItems(data)
	return err
}

// read loads the file. damaged is true when the file exists but does not
// parse, in which case items is empty and err is nil.
func (s *FileStorage) read() (items map[string]string, damaged bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), false, nil
		}
		return nil, false, fmt.Errorf("read storage file: %w", err)
	}
	items, err = parseItems(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable storage file", "path", s.path, "err", err)
		return make(map[string]string), true, nil
	}
	return items, false, nil
}

func parseItems(data []byte) (map[string]string, error) {
	items := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse storage file: %w", err)
	}
	if items == nil {
		items = make(map[string]string)
	}
	return items, nil
}

// quarantine moves a damaged file aside so the rewrite does not destroy it.
func (s *FileStorage) quarantine(damaged bool) error {
	if !damaged {
		return nil
	}
	backup := s.path + CorruptSuffix
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("move damaged storage file aside: %w", err)
	}
	s.logger.Warn("moved unreadable storage file aside", "path", s.path, "backup", backup)
	return nil
}

func (s *FileStorage) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage file: %w", err)
	}
	data = append(data, '\n')
	if err := atomicWriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", filepath.Base(path), time.Now().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on the same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
