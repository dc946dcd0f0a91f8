package todo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/kv"
)

// DefaultKey is the storage key the task list lives under.
const DefaultKey = "tasks"

// Store reads and writes the task list in a kv.Storage.
//
// Every mutation is a read-modify-write of the whole list. Writers in other
// processes sharing the same storage are not detected.
type Store struct {
	kv     kv.Storage
	key    string
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used to report unreadable persisted values.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a Store backed by storage.
func NewStore(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		kv:     storage,
		key:    DefaultKey,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// LoadAll returns the persisted task list in order.
// An absent or malformed value yields an empty list and a nil error.
func (s *Store) LoadAll(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	tasks, err := decode(s.key, raw)
	if err != nil {
		s.logger.Warn("ignoring unreadable task list", "key", s.key, "err", err)
		return []string{}, nil
	}
	return tasks, nil
}

// Append adds task to the end of the persisted list.
// Callers are responsible for rejecting empty tasks.
func (s *Store) Append(ctx context.Context, task string) error {
	tasks, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(tasks, task))
}

// RemoveFirstMatching removes the first entry exactly equal to task.
// It is a no-op when nothing matches.
func (s *Store) RemoveFirstMatching(ctx context.Context, task string) error {
	tasks, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(tasks, task)
	if idx < 0 {
		return nil
	}
	return s.save(ctx, removeIndex(tasks, idx))
}

// RemoveAt removes the entry at index, provided it still equals task.
// If the persisted list has changed underneath and index no longer holds
// task, it falls back to RemoveFirstMatching.
func (s *Store) RemoveAt(ctx context.Context, index int, task string) error {
	tasks, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(tasks) || tasks[index] != task {
		index = indexOf(tasks, task)
		if index < 0 {
			return nil
		}
	}
	return s.save(ctx, removeIndex(tasks, index))
}

// Clear deletes the persisted key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	return nil
}

// Raw returns the persisted value as stored, without decoding it.
func (s *Store) Raw(ctx context.Context) (string, bool, error) {
	return s.kv.GetItem(ctx, s.key)
}

// Validate reports whether raw is a valid persisted task list.
// The returned error, if any, is a *ParseError.
func (s *Store) Validate(raw string) error {
	_, err := decode(s.key, raw)
	return err
}

// IsParseError reports whether err is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func (s *Store) save(ctx context.Context, tasks []string) error {
	raw, err := encode(tasks)
	if err != nil {
		return err
	}
	if err := s.kv.SetItem(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func indexOf(tasks []string, task string) int {
	for i, t := range tasks {
		if t == task {
			return i
		}
	}
	return -1
}

func removeIndex(tasks []string, idx int) []string {
	out := make([]string, 0, len(tasks)-1)
	out = append(out, tasks[:idx]...)
	return append(out, tasks[idx+1:]...)
}
