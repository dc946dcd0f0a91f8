package config

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/notify"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file
// 4. Environment variables
// 5. CLI flags
//
// The global flags are defined on fs and args are parsed with it; the
// remaining arguments are available from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	defaults := defaultConfig()
	cfg := &defaults
	var files []string

	// 1. Defaults
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		files = append(files, path)
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		files = append(files, path)
	}

	// 4. Environment
	loadFromEnv(cfg, sources)

	// 5. CLI flags
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values and validation
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources, Files: files}, nil
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the file
// change cfg, and each of them is attributed to source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	for _, k := range md.Keys() {
		if len(k) != 1 {
			continue
		}
		if _, ok := sources[k[0]]; ok {
			sources[k[0]] = source
		}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// finalizeConfig normalizes values, fills derived defaults and validates.
func finalizeConfig(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if !kv.ValidBackend(backend) {
		return fmt.Errorf("storage_backend: %w: %q", kv.ErrUnknownBackend, cfg.StorageBackend)
	}
	cfg.StorageBackend = kv.CanonicalBackend(backend)

	mode, ok := notify.NormalizeMode(cfg.Announce)
	if !ok {
		return fmt.Errorf("announce: unknown mode %q (want none, log or speech)", cfg.Announce)
	}
	cfg.Announce = mode

	if strings.TrimSpace(cfg.StorageKey) == "" {
		return fmt.Errorf("storage_key must not be empty")
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("log_level: unknown level %q", cfg.LogLevel)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("log_format: unknown format %q", cfg.LogFormat)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if cfg.DataFile == "" {
		cfg.DataFile = DefaultDataFile(cfg.StorageBackend)
	}
	if cfg.StorageBackend != kv.BackendMemory {
		cfg.DataFile = expandPath(cfg.DataFile)
		if abs, err := filepath.Abs(cfg.DataFile); err == nil {
			cfg.DataFile = abs
		}
	}
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.SpeechCommand = expandPath(cfg.SpeechCommand)
	cfg.HookCommand = strings.TrimSpace(expandPath(cfg.HookCommand))
	return nil
}

// DefaultDataFile returns the default data file for backend.
func DefaultDataFile(backend string) string {
	switch backend {
	case kv.BackendSQLite:
		return filepath.Join(DefaultHomeDir, "store.db")
	case kv.BackendMemory:
		return ""
	default:
		return filepath.Join(DefaultHomeDir, "store.json")
	}
}
