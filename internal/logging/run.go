package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogExt is the extension of per-run log files.
const LogExt = ".log"

// RunFile is a log file for a single process run.
//
// Files live under <baseDir>/<store-slug>/<run-id>.log so that runs against
// different task stores do not interleave.
type RunFile struct {
	Dir   string
	RunID string
	Path  string
	file  *os.File
}

// OpenRunFile creates the per-run log directory and file for the store at
// storePath.
func OpenRunFile(baseDir, storePath string) (*RunFile, error) {
	dir, err := RunDir(baseDir, storePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := runID()
	path := filepath.Join(dir, id+LogExt)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &RunFile{Dir: dir, RunID: id, Path: path, file: file}, nil
}

// Logger returns a logger writing to the run file.
func (r *RunFile) Logger(opts Options) *log.Logger {
	return New(r.file, opts)
}

// Writer returns the underlying file.
func (r *RunFile) Writer() *os.File {
	return r.file
}

// Close closes the log file.
func (r *RunFile) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// RunDir returns the directory holding run logs for storePath.
func RunDir(baseDir, storePath string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	if !filepath.IsAbs(baseDir) {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return "", fmt.Errorf("resolve log dir: %w", err)
		}
		baseDir = abs
	}
	return filepath.Join(filepath.Clean(baseDir), storeSlug(storePath)), nil
}

func storeSlug(storePath string) string {
	if storePath == "" {
		return "memory"
	}
	if abs, err := filepath.Abs(storePath); err == nil {
		storePath = abs
	}
	name := strings.TrimSuffix(filepath.Base(storePath), filepath.Ext(storePath))
	return fmt.Sprintf("%s-%s", slugify(name), hashPath(storePath))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "store"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "store"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}
