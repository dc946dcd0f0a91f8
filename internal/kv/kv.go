// Package kv provides the local key-value stores that hold persisted state.
//
// Values are opaque strings, mirroring a browser's localStorage: callers
// encode their own payloads (the task list stores a JSON array under one key).
// An absent key is distinct from a key holding an empty value.
//
// # Backends
//
//   - "file": a single JSON object file, rewritten atomically on every change
//   - "sqlite": a SQLite database with one kv table
//   - "memory": an in-process map, lost on exit
package kv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/utils"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is a string key-value store.
type Storage interface {
	// GetItem returns the value stored under key. ok is false when the key
	// is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Option configures a backend.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger backends use to report recovered damage.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open constructs the named backend. path is ignored by the memory backend.
func Open(backend, path string, opts ...Option) (Storage, error) {
	switch CanonicalBackend(backend) {
	case BackendFile:
		return OpenFile(path, opts...)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	switch CanonicalBackend(name) {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// CanonicalBackend maps backend aliases ("json", "sqlite3", "db", "mem")
// to their canonical names. Unknown names are returned lower-cased.
func CanonicalBackend(name string) string {
	name = utils.NormalizeName(name)
	switch name {
	case "", "json":
		return BackendFile
	case "sqlite3", "db":
		return BackendSQLite
	case "mem":
		return BackendMemory
	}
	return name
}
