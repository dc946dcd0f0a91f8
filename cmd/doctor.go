package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/notify"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/utils"
)

// doctorCommand checks config, storage, the stored task list and the speech
// engine.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config
	allOK := true

	fmt.Fprintln(stdout, "Configuration")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "  Config file: %s\n", file)
	} else {
		fmt.Fprintln(stdout, "  Config file: none (using defaults)")
	}
	if *verbose {
		for _, field := range config.Fields() {
			fmt.Fprintf(stdout, "    %-15s %s\n", field, cws.Sources[field])
		}
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Storage")
	if !checkStorage(ctx, cfg) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Announcements")
	fmt.Fprintf(stdout, "  Mode: %s\n", cfg.Announce)
	if cfg.Announce == notify.ModeSpeech {
		checkSpeechEngine(cfg.SpeechCommand)
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Hooks")
	checkHook(cfg.HookCommand)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Logging")
	checkLogDir(cfg.LogDir)
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. tasklist may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

func checkStorage(ctx context.Context, cfg *config.Config) bool {
	fmt.Fprintf(stdout, "  Backend: %s\n", cfg.StorageBackend)
	if cfg.StorageBackend != kv.BackendMemory {
		fmt.Fprintf(stdout, "  Data file: %s\n", cfg.DataFile)
		if _, err := os.Stat(cfg.DataFile); os.IsNotExist(err) {
			fmt.Fprintln(stdout, "  ⚠️  Data file does not exist yet (created on first change)")
			return true
		}
	}

	storage, err := kv.Open(cfg.StorageBackend, cfg.DataFile)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Cannot open storage: %v\n", err)
		return false
	}
	defer storage.Close()

	if file, ok := storage.(*kv.FileStorage); ok {
		if err := file.Check(); err != nil {
			fmt.Fprintf(stdout, "  ❌ Data file is damaged: %v\n", err)
			fmt.Fprintf(stdout, "     It reads as empty; the next change moves it to %s.\n", file.Path()+kv.CorruptSuffix)
			return false
		}
	}

	store := todo.NewStore(storage, todo.WithKey(cfg.StorageKey))
	raw, ok, err := store.Raw(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Cannot read key %q: %v\n", cfg.StorageKey, err)
		return false
	}
	if !ok {
		fmt.Fprintf(stdout, "  ✅ OK (key %q not set, list is empty)\n", cfg.StorageKey)
		return true
	}
	if err := store.Validate(raw); err != nil {
		fmt.Fprintf(stdout, "  ❌ Stored task list is invalid: %v\n", err)
		fmt.Fprintln(stdout, "     It will be read as empty and replaced on the next change.")
		return false
	}
	tasks, _ := store.LoadAll(ctx)
	fmt.Fprintf(stdout, "  ✅ OK (%d task(s) under key %q)\n", len(tasks), cfg.StorageKey)
	return true
}

// checkSpeechEngine reports the engine announcements will use. A missing
// engine only disables speech, so it is never a failure.
func checkSpeechEngine(command string) {
	if strings.TrimSpace(command) != "" {
		fmt.Fprintf(stdout, "  Speech command: %s\n", command)
		resolved, err := utils.ResolveExecutable(command)
		if err != nil {
			fmt.Fprintf(stdout, "  ⚠️  Not usable: %v (announcements will be skipped)\n", err)
			return
		}
		fmt.Fprintf(stdout, "  ✅ OK (%s)\n", resolved)
		return
	}

	fmt.Fprintf(stdout, "  Speech command: auto-detect (%s)\n", strings.Join(notify.Engines, ", "))
	if engine := notify.DetectEngine("", nil); engine != "" {
		fmt.Fprintf(stdout, "  ✅ OK (found %s)\n", engine)
		return
	}
	fmt.Fprintln(stdout, "  ⚠️  No speech engine found (announcements will be skipped)")
}

// checkHook reports whether the hook command can be found. A broken hook is
// logged on every change but never blocks one, so it is only a warning.
func checkHook(command string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fmt.Fprintln(stdout, "  Hook command: none")
		return
	}
	fmt.Fprintf(stdout, "  Hook command: %s\n", command)
	if _, err := utils.ResolveExecutable(fields[0]); err != nil {
		fmt.Fprintf(stdout, "  ⚠️  Not usable: %v\n", err)
		return
	}
	fmt.Fprintln(stdout, "  ✅ OK")
}

func checkLogDir(dir string) {
	fmt.Fprintf(stdout, "  Log dir: %s\n", dir)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(stdout, "  ✅ OK (created on first interactive session)")
	case err != nil:
		fmt.Fprintf(stdout, "  ⚠️  %v\n", err)
	case !info.IsDir():
		fmt.Fprintln(stdout, "  ⚠️  Path is not a directory")
	default:
		fmt.Fprintln(stdout, "  ✅ OK")
	}
}
