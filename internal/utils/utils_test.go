package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"-r, 160", []string{"-r", "160"}},
		{" a ,, b ,", []string{"a", "b"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if got := SplitAndTrim(tt.in, ","); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAndTrim(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/", ""},
		{"/2", "[2]"},
		{"#/tasks/0", "tasks[0]"},
		{"/a~1b/c~0d", "a/b.c~d"},
		{"/tasks/-1", "tasks.-1"},
	}
	for _, tt := range tests {
		if got := JSONPointerToPath(tt.in); got != tt.want {
			t.Errorf("JSONPointerToPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeChoice(t *testing.T) {
	aliases := map[string]string{"speech": "speech", "say": "speech", "off": "none"}

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"speech", "speech", true},
		{"  SAY ", "speech", true},
		{"Off", "none", true},
		{"beep", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeChoice(tt.in, aliases)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeChoice(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolveExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not used on Windows")
	}
	dir := t.TempDir()

	exe := filepath.Join(dir, "speak")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "notes")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got, err := ResolveExecutable(exe); err != nil || got != exe {
		t.Errorf("ResolveExecutable(exe) = %q, %v", got, err)
	}
	if _, err := ResolveExecutable(plain); err == nil {
		t.Error("expected error for non-executable file")
	}
	if _, err := ResolveExecutable(dir); err == nil {
		t.Error("expected error for directory")
	}
	if _, err := ResolveExecutable("  "); err == nil {
		t.Error("expected error for empty name")
	}

	t.Setenv("PATH", dir)
	if got, err := ResolveExecutable("speak"); err != nil || got != exe {
		t.Errorf("PATH lookup = %q, %v", got, err)
	}
	if _, err := ResolveExecutable("missing-engine"); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestWindowsExecutableExtensions(t *testing.T) {
	tests := []struct {
		name    string
		pathext string
		want    []string
	}{
		{"default", "", []string{".com", ".exe", ".bat", ".cmd"}},
		{"custom", ".COM;.EXE;.PS1", []string{".com", ".exe", ".ps1"}},
		{"without dots", "COM;EXE", []string{".com", ".exe"}},
		{"spaces and blanks", " .EXE ; ;.BAT", []string{".exe", ".bat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATHEXT", tt.pathext)
			got := WindowsExecutableExtensions()
			if len(got) != len(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			for _, ext := range tt.want {
				if !got[ext] {
					t.Errorf("missing %q in %v", ext, got)
				}
			}
		})
	}
}

func TestIsWindowsExecutable(t *testing.T) {
	t.Setenv("PATHEXT", ".COM;.EXE;.BAT;.CMD")
	tests := map[string]bool{
		`C:\tools\espeak.exe`: true,
		`C:\say.BAT`:          true,
		`C:\speak`:            false,
		`C:\readme.txt`:       false,
		"":                    false,
	}
	for path, want := range tests {
		if got := IsWindowsExecutable(path); got != want {
			t.Errorf("IsWindowsExecutable(%q) = %v, want %v", path, got, want)
		}
	}
}
