package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// WindowsExecutableExtensions returns the lowercase extensions, with a
// leading dot, that PATHEXT marks as executable.
func WindowsExecutableExtensions() map[string]bool {
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = defaultPathExt
	}
	exts := make(map[string]bool)
	for _, ext := range SplitAndTrim(pathext, ";") {
		exts["."+strings.TrimPrefix(NormalizeName(ext), ".")] = true
	}
	return exts
}

// IsWindowsExecutable reports whether path has a PATHEXT extension.
func IsWindowsExecutable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext != "" && WindowsExecutableExtensions()[ext]
}

// IsExecutable reports whether info describes a file that can be executed on
// the current platform.
func IsExecutable(path string, info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return IsWindowsExecutable(path)
	}
	return info.Mode().Perm()&0o111 != 0
}

// ResolveExecutable resolves binary to an executable path, either directly
// when it names a file or through PATH.
func ResolveExecutable(binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("no executable configured")
	}
	if strings.ContainsRune(binary, os.PathSeparator) {
		info, err := os.Stat(binary)
		if err != nil {
			return "", err
		}
		if !IsExecutable(binary, info) {
			return "", fmt.Errorf("%s is not executable", binary)
		}
		return binary, nil
	}
	return exec.LookPath(binary)
}
