package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func openBackends(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "store.json"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	db, err := OpenSQLite(filepath.Join(dir, "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Storage{
		BackendFile:   file,
		BackendSQLite: db,
		BackendMemory: NewMemory(),
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.GetItem(ctx, "tasks"); err != nil || ok {
				t.Fatalf("GetItem on empty store: ok=%v err=%v, want absent", ok, err)
			}

			if err := s.SetItem(ctx, "tasks", `["a"]`); err != nil {
				t.Fatalf("SetItem failed: %v", err)
			}
			got, ok, err := s.GetItem(ctx, "tasks")
			if err != nil || !ok {
				t.Fatalf("GetItem after set: ok=%v err=%v", ok, err)
			}
			if got != `["a"]` {
				t.Errorf("GetItem: got %q, want %q", got, `["a"]`)
			}

			if err := s.SetItem(ctx, "tasks", `[]`); err != nil {
				t.Fatalf("SetItem overwrite failed: %v", err)
			}
			got, ok, _ = s.GetItem(ctx, "tasks")
			if !ok || got != `[]` {
				t.Errorf("empty array must be stored, not removed: got %q ok=%v", got, ok)
			}

			if err := s.RemoveItem(ctx, "tasks"); err != nil {
				t.Fatalf("RemoveItem failed: %v", err)
			}
			if _, ok, _ := s.GetItem(ctx, "tasks"); ok {
				t.Error("key still present after RemoveItem")
			}
			if err := s.RemoveItem(ctx, "tasks"); err != nil {
				t.Errorf("RemoveItem on absent key: %v", err)
			}
		})
	}
}

func TestStorageKeysAreIndependent(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SetItem(ctx, "tasks", "one"); err != nil {
				t.Fatal(err)
			}
			if err := s.SetItem(ctx, "other", "two"); err != nil {
				t.Fatal(err)
			}
			if err := s.RemoveItem(ctx, "tasks"); err != nil {
				t.Fatal(err)
			}
			got, ok, err := s.GetItem(ctx, "other")
			if err != nil || !ok || got != "two" {
				t.Errorf("other key: got %q ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestFileStoragePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s1, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.SetItem(ctx, "tasks", `["buy milk","call sam"]`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	s2, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := s2.GetItem(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("GetItem after reopen: ok=%v err=%v", ok, err)
	}
	if got != `["buy milk","call sam"]` {
		t.Errorf("GetItem after reopen: got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the store file, found %d entries (temp file left behind?)", len(entries))
	}
}

func TestFileStorageDamagedFile(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ctx context.Context, s *FileStorage) error
		want   map[string]string
	}{
		{"set rewrites", func(ctx context.Context, s *FileStorage) error {
			return s.SetItem(ctx, "tasks", `["fresh"]`)
		}, map[string]string{"tasks": `["fresh"]`}},
		{"remove rewrites", func(ctx context.Context, s *FileStorage) error {
			return s.RemoveItem(ctx, "tasks")
		}, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "store.json")
			if err := os.WriteFile(path, []byte("{truncated"), 0o600); err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			s, err := OpenFile(path, WithLogger(log.New(&buf)))
			if err != nil {
				t.Fatal(err)
			}

			if err := s.Check(); err == nil {
				t.Error("Check should report the damaged file")
			}
			if _, ok, err := s.GetItem(ctx, "tasks"); err != nil || ok {
				t.Fatalf("GetItem on damaged file: ok=%v err=%v, want absent", ok, err)
			}
			if !strings.Contains(buf.String(), "ignoring unreadable storage file") {
				t.Errorf("expected a warning, got %q", buf.String())
			}

			if err := tt.mutate(ctx, s); err != nil {
				t.Fatalf("mutation on damaged file: %v", err)
			}
			if err := s.Check(); err != nil {
				t.Errorf("file still damaged after rewrite: %v", err)
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var got map[string]string
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rewritten file = %v, want %v", got, tt.want)
			}

			backup, err := os.ReadFile(path + CorruptSuffix)
			if err != nil {
				t.Fatalf("damaged file not kept: %v", err)
			}
			if string(backup) != "{truncated" {
				t.Errorf("backup = %q", backup)
			}
		})
	}
}

func TestFileStorageNullAndBlank(t *testing.T) {
	for _, content := range []string{"null", "  \n"} {
		path := filepath.Join(t.TempDir(), "store.json")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		s, _ := OpenFile(path)
		if err := s.SetItem(context.Background(), "tasks", "[]"); err != nil {
			t.Errorf("SetItem over %q: %v", content, err)
		}
		if _, err := os.Stat(path + CorruptSuffix); !os.IsNotExist(err) {
			t.Errorf("%q is not damage and must not be moved aside", content)
		}
	}
}

func TestFileStorageReadErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	s, _ := OpenFile(dir)
	if _, _, err := s.GetItem(context.Background(), "tasks"); err == nil {
		t.Error("reading a directory must fail, not read as empty")
	}
}

func TestSQLiteStoragePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	s1, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.SetItem(ctx, "tasks", `["x"]`); err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, ok, err := s2.GetItem(ctx, "tasks")
	if err != nil || !ok || got != `["x"]` {
		t.Errorf("GetItem after reopen: got %q ok=%v err=%v", got, ok, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		wantErr bool
	}{
		{"file", false},
		{"", false},
		{"json", false},
		{"sqlite", false},
		{"SQLite3", false},
		{"memory", false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(tt.backend, filepath.Join(dir, "s-"+tt.backend))
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownBackend) {
					t.Errorf("Open(%q): got %v, want ErrUnknownBackend", tt.backend, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", tt.backend, err)
			}
			s.Close()
		})
	}
}

func TestValidBackend(t *testing.T) {
	if !ValidBackend("sqlite") || !ValidBackend("memory") || !ValidBackend("file") {
		t.Error("expected built-in backends to be valid")
	}
	if ValidBackend("etcd") {
		t.Error("etcd should not be a valid backend")
	}
}
