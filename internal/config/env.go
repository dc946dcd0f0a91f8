package config

import (
	"os"
	"strings"

	"github.com/nibzard/tasklist-go/internal/utils"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKLIST_"

// loadFromEnv overrides config from environment variables and records the
// source of every value it sets.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setString := func(env, field string, target *string) {
		if v := os.Getenv(EnvPrefix + env); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(env, field string, target *bool) {
		if v := os.Getenv(EnvPrefix + env); v != "" {
			*target = boolFromString(v)
			sources[field] = SourceEnv
		}
	}

	setString("STORAGE", "storage_backend", &cfg.StorageBackend)
	setString("DATA", "data_file", &cfg.DataFile)
	setString("KEY", "storage_key", &cfg.StorageKey)
	setString("ANNOUNCE", "announce", &cfg.Announce)
	setString("SPEECH_COMMAND", "speech_command", &cfg.SpeechCommand)
	setString("SPEECH_VOICE", "speech_voice", &cfg.SpeechVoice)
	if v := os.Getenv(EnvPrefix + "SPEECH_ARGS"); v != "" {
		cfg.SpeechArgs = utils.SplitAndTrim(v, ",")
		sources["speech_args"] = SourceEnv
	}

	setString("HOOK_COMMAND", "hook_command", &cfg.HookCommand)

	setString("LOG_DIR", "log_dir", &cfg.LogDir)
	setString("LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("LOG_CALLER", "log_caller", &cfg.LogCaller)
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
