package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultHomeDir        = "~/.tasklist"
	DefaultStorageBackend = "file"
	DefaultStorageKey     = "tasks"
	DefaultAnnounce       = "speech"
	DefaultLogDir         = "~/.tasklist/logs"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Storage
	StorageBackend string `toml:"storage_backend"`
	DataFile       string `toml:"data_file"`
	StorageKey     string `toml:"storage_key"`

	// Announcements
	Announce      string   `toml:"announce"`
	SpeechCommand string   `toml:"speech_command"`
	SpeechVoice   string   `toml:"speech_voice"`
	SpeechArgs    []string `toml:"speech_args"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"storage_backend",
		"data_file",
		"storage_key",
		"announce",
		"speech_command",
		"speech_voice",
		"speech_args",
		"hook_command",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}
