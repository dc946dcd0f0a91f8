package config

import (
	"flag"
)

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"storage":        "storage_backend",
	"data":           "data_file",
	"key":            "storage_key",
	"announce":       "announce",
	"speech-command": "speech_command",
	"speech-voice":   "speech_voice",
	"hook-command":   "hook_command",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs, parses args and records which
// fields were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Storage backend (file|sqlite|memory)")
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the data file (default ~/.tasklist/store.json, store.db for sqlite)")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key holding the task list")
	fs.StringVar(&cfg.Announce, "announce", cfg.Announce, "Announcements (none|log|speech)")
	fs.StringVar(&cfg.SpeechCommand, "speech-command", cfg.SpeechCommand, "Speech engine binary (default: auto-detect)")
	fs.StringVar(&cfg.SpeechVoice, "speech-voice", cfg.SpeechVoice, "Voice passed to the speech engine with -v")
	fs.StringVar(&cfg.HookCommand, "hook-command", cfg.HookCommand, "Command run after every change to the list")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
