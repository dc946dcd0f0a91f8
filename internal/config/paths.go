package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// windowsVar matches %NAME% references.
var windowsVar = regexp.MustCompile(`%([^%]+)%`)

// expandPath expands $VAR and ${VAR}, %VAR% on Windows, and a leading ~ to
// the user's home directory. Unknown %VAR% references are left as written.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsVar.ReplaceAllStringFunc(p, func(ref string) string {
			if val, ok := os.LookupEnv(strings.Trim(ref, "%")); ok {
				return val
			}
			return ref
		})
	}

	rest, ok := strings.CutPrefix(p, "~")
	if !ok || (rest != "" && !isHomeSep(rest[0])) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest[1:])
}

func isHomeSep(c byte) bool {
	return c == '/' || (runtime.GOOS == "windows" && c == '\\')
}
