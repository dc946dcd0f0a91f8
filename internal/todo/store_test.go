package todo

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.MemoryStorage) {
	t.Helper()
	mem := kv.NewMemory()
	return NewStore(mem), mem
}

func mustLoad(t *testing.T, s *Store) []string {
	t.Helper()
	tasks, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	return tasks
}

func TestLoadAllAbsentKey(t *testing.T) {
	s, _ := newTestStore(t)
	got := mustLoad(t, s)
	if got == nil || len(got) != 0 {
		t.Errorf("LoadAll on absent key: got %#v, want empty non-nil slice", got)
	}
}

func TestLoadAllIdempotent(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	if err := mem.SetItem(ctx, DefaultKey, `["buy milk","call sam"]`); err != nil {
		t.Fatal(err)
	}

	first := mustLoad(t, s)
	second := mustLoad(t, s)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("LoadAll not idempotent: %v vs %v", first, second)
	}

	raw, _, _ := mem.GetItem(ctx, DefaultKey)
	if raw != `["buy milk","call sam"]` {
		t.Errorf("LoadAll mutated storage: %q", raw)
	}
}

func TestAppendRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		tasks []string
	}{
		{"single", []string{"buy milk"}},
		{"ordered", []string{"c", "a", "b"}},
		{"duplicates", []string{"a", "a", "b", "a"}},
		{"whitespace and unicode", []string{"   ", "café ☕", "line\nbreak", `quote "x"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			ctx := context.Background()
			for _, task := range tt.tasks {
				if err := s.Append(ctx, task); err != nil {
					t.Fatalf("Append(%q) failed: %v", task, err)
				}
			}
			got := mustLoad(t, s)
			if !reflect.DeepEqual(got, tt.tasks) {
				t.Errorf("round trip: got %q, want %q", got, tt.tasks)
			}
		})
	}
}

func TestPersistedLayout(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	s.Append(ctx, "buy milk")
	s.Append(ctx, "call sam")

	raw, ok, err := mem.GetItem(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("tasks key missing: ok=%v err=%v", ok, err)
	}
	if raw != `["buy milk","call sam"]` {
		t.Errorf("persisted value: got %q", raw)
	}
}

func TestRemoveFirstMatching(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, task := range []string{"a", "b", "a"} {
		s.Append(ctx, task)
	}

	if err := s.RemoveFirstMatching(ctx, "a"); err != nil {
		t.Fatalf("RemoveFirstMatching failed: %v", err)
	}
	got := mustLoad(t, s)
	want := []string{"b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after RemoveFirstMatching: got %q, want %q", got, want)
	}
}

func TestRemoveFirstMatchingNoMatch(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	if err := s.RemoveFirstMatching(ctx, "missing"); err != nil {
		t.Fatalf("RemoveFirstMatching on empty store: %v", err)
	}
	if _, ok, _ := mem.GetItem(ctx, DefaultKey); ok {
		t.Error("no-op removal must not create the key")
	}

	s.Append(ctx, "Buy milk")
	if err := s.RemoveFirstMatching(ctx, "buy milk"); err != nil {
		t.Fatal(err)
	}
	if got := mustLoad(t, s); !reflect.DeepEqual(got, []string{"Buy milk"}) {
		t.Errorf("match must be case-sensitive: got %q", got)
	}
}

func TestRemoveAt(t *testing.T) {
	tests := []struct {
		name  string
		index int
		task  string
		want  []string
	}{
		{"removes second duplicate", 2, "a", []string{"a", "b"}},
		{"removes first duplicate", 0, "a", []string{"b", "a"}},
		{"stale index falls back to content", 1, "a", []string{"b", "a"}},
		{"out of range falls back to content", 9, "b", []string{"a", "a"}},
		{"no match is a no-op", 0, "zzz", []string{"a", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			ctx := context.Background()
			for _, task := range []string{"a", "b", "a"} {
				s.Append(ctx, task)
			}
			if err := s.RemoveAt(ctx, tt.index, tt.task); err != nil {
				t.Fatalf("RemoveAt failed: %v", err)
			}
			if got := mustLoad(t, s); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClear(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	for _, task := range []string{"a", "b", "c"} {
		s.Append(ctx, task)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := mustLoad(t, s); len(got) != 0 {
		t.Errorf("after Clear: got %q, want empty", got)
	}
	if _, ok, _ := mem.GetItem(ctx, DefaultKey); ok {
		t.Error("Clear must delete the key, not write an empty array")
	}
	if err := s.Clear(ctx); err != nil {
		t.Errorf("Clear on empty store: %v", err)
	}
}

func TestEmptyArrayAndAbsentKeyReadTheSame(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	absent := mustLoad(t, s)
	mem.SetItem(ctx, DefaultKey, "[]")
	empty := mustLoad(t, s)

	if !reflect.DeepEqual(absent, empty) {
		t.Errorf("absent %#v and [] %#v should read the same", absent, empty)
	}
}

func TestLoadAllMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"empty string", ""},
		{"object", `{"tasks":["a"]}`},
		{"number items", `[1,2,3]`},
		{"mixed items", `["a",2]`},
		{"null", "null"},
		{"truncated", `["a",`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mem := kv.NewMemory()
			s := NewStore(mem, WithLogger(log.New(&buf)))
			mem.SetItem(context.Background(), DefaultKey, tt.raw)

			got, err := s.LoadAll(context.Background())
			if err != nil {
				t.Fatalf("LoadAll must not fail on malformed data: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("got %q, want empty", got)
			}
			if !strings.Contains(buf.String(), "ignoring unreadable task list") {
				t.Errorf("expected a warning to be logged, got %q", buf.String())
			}
		})
	}
}

func TestAppendOverwritesMalformed(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()
	mem.SetItem(ctx, DefaultKey, "not json")

	if err := s.Append(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	if got := mustLoad(t, s); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Errorf("got %q", got)
	}
}

func TestValidate(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Validate(`["a","b"]`); err != nil {
		t.Errorf("valid list rejected: %v", err)
	}

	err := s.Validate(`["a",2]`)
	if err == nil {
		t.Fatal("expected error for non-string item")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Path != "[1]" {
		t.Errorf("Path: got %q, want [1]", pe.Path)
	}
	if !IsParseError(s.Validate("not json")) {
		t.Error("IsParseError should report non-JSON input")
	}
}

func TestWithKey(t *testing.T) {
	mem := kv.NewMemory()
	s := NewStore(mem, WithKey("work"))
	ctx := context.Background()
	s.Append(ctx, "ship it")

	if _, ok, _ := mem.GetItem(ctx, DefaultKey); ok {
		t.Error("default key should be untouched")
	}
	raw, ok, _ := mem.GetItem(ctx, "work")
	if !ok || raw != `["ship it"]` {
		t.Errorf("custom key: got %q ok=%v", raw, ok)
	}
	if s.Key() != "work" {
		t.Errorf("Key: got %q", s.Key())
	}
}

type failingStorage struct {
	kv.Storage
	err error
}

func (f failingStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.err
}

func TestLoadAllStorageError(t *testing.T) {
	boom := errors.New("disk on fire")
	s := NewStore(failingStorage{Storage: kv.NewMemory(), err: boom})

	if _, err := s.LoadAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("LoadAll: got %v, want wrapped storage error", err)
	}
	if err := s.Append(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("Append: got %v, want wrapped storage error", err)
	}
}
