package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const configFileName = "tasklist.toml"

// findProjectConfigFile returns tasklist.toml or .tasklist.toml in the
// current directory, or "".
func findProjectConfigFile() string {
	return firstExisting(configFileName, "."+configFileName)
}

// findUserConfigFile returns the user-level config file, or "".
// ~/.tasklist/tasklist.toml wins over the OS config directory.
func findUserConfigFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tasklist", configFileName))
	}
	if dir := osUserConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "tasklist", configFileName))
	}
	return firstExisting(candidates...)
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// osUserConfigDir is os.UserConfigDir, except that XDG_CONFIG_HOME is
// honored on every Unix-like system and errors become "".
func osUserConfigDir() string {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" && runtime.GOOS != "plan9" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}

// defaultConfig returns the built-in settings. DataFile is left empty and
// derived from the backend in finalizeConfig.
func defaultConfig() Config {
	return Config{
		StorageBackend: DefaultStorageBackend,
		StorageKey:     DefaultStorageKey,
		Announce:       DefaultAnnounce,
		LogDir:         DefaultLogDir,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// GetConfigFile returns the highest-priority config file that was read, or "".
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
