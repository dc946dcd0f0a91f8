package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Storage backend: file, sqlite or memory
storage_backend = "file"

# Data file (supports ~ expansion). Defaults to ~/.tasklist/store.json,
# or ~/.tasklist/store.db for the sqlite backend.
# data_file = "~/.tasklist/store.json"

# Key the task list is stored under
storage_key = "tasks"

# Announce changes: none, log or speech
announce = "speech"

# Speech engine; auto-detects say, espeak-ng, espeak or spd-say when empty
# speech_command = "espeak-ng"
# speech_voice = "en-us"
# speech_args = ["-s", "160"]

# Command run after every add, remove or clear. It gets the action and the
# task as arguments and the event as JSON on stdin.
# hook_command = "~/.tasklist/on-change.sh"

# Log directory for interactive sessions
log_dir = "~/.tasklist/logs"

# Log level: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"

log_timestamps = false
log_caller = false
`
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
