package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/hooks"
	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/notify"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// session is an opened store with a loaded controller.
type session struct {
	cfg     *config.Config
	storage kv.Storage
	store   *todo.Store
	list    *ui.List
	ctrl    *app.Controller
	logger  *log.Logger
	runFile *logging.RunFile
	hook    *hooks.Runner
}

// openSession opens the configured storage and loads the task list. Logs go
// to logOut, or to a per-run file under the log directory when logOut is nil.
// That interactive session also runs hooks in the background so the UI never
// waits on them; Close drains them.
func openSession(ctx context.Context, cfg *config.Config, logOut io.Writer) (*session, error) {
	s := &session{cfg: cfg}
	opts := logging.FromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	if logOut != nil {
		s.logger = logging.New(logOut, opts)
	} else {
		rf, err := logging.OpenRunFile(cfg.LogDir, cfg.DataFile)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
			s.logger = logging.Discard()
		} else {
			s.runFile = rf
			s.logger = rf.Logger(opts)
		}
	}

	storage, err := kv.Open(cfg.StorageBackend, cfg.DataFile, kv.WithLogger(s.logger))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.StorageBackend, err)
	}
	s.storage = storage

	announcer, err := notify.New(cfg.Announce, notify.Options{
		Command: cfg.SpeechCommand,
		Voice:   cfg.SpeechVoice,
		Args:    cfg.SpeechArgs,
		Logger:  s.logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	s.store = todo.NewStore(storage, todo.WithKey(cfg.StorageKey), todo.WithLogger(s.logger))
	s.list = ui.NewList()
	s.ctrl = app.New(s.store, s.list, announcer, s.logger)
	if cfg.HookCommand != "" {
		s.hook = &hooks.Runner{Command: cfg.HookCommand, Logger: s.logger, Detached: logOut == nil}
		s.ctrl.SetHook(s.hook)
	}

	if err := s.ctrl.Load(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	s.logger.Debug("session opened", "backend", cfg.StorageBackend, "data", cfg.DataFile, "key", cfg.StorageKey)
	return s, nil
}

// Close waits for pending hooks, then releases the storage and the run log.
func (s *session) Close() error {
	s.hook.Wait()
	var firstErr error
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			firstErr = err
		}
	}
	if s.runFile != nil {
		if err := s.runFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// storeLabel describes where tasks live, for headings and diagnostics.
func storeLabel(cfg *config.Config) string {
	if cfg.StorageBackend == kv.BackendMemory {
		return "memory (not persisted)"
	}
	return fmt.Sprintf("%s: %s [%s]", cfg.StorageBackend, cfg.DataFile, cfg.StorageKey)
}
