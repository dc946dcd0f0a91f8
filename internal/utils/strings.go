// Package utils holds small helpers shared by config, storage and the
// announcement engines.
package utils

import (
	"strconv"
	"strings"
)

// NormalizeName lowercases and trims a configuration value.
func NormalizeName(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// NormalizeChoice maps input through aliases after normalizing it.
// It returns the canonical value and whether input was recognized.
func NormalizeChoice(input string, aliases map[string]string) (string, bool) {
	v, ok := aliases[NormalizeName(input)]
	return v, ok
}

// SplitAndTrim splits s on sep, trims each part and drops empty ones.
// The result is never nil.
func SplitAndTrim(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// JSONPointerToPath renders an RFC 6901 pointer, as reported by schema
// validation, in dotted form: "#/tasks/0" becomes "tasks[0]" and "/2"
// becomes "[2]".
func JSONPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")

	var b strings.Builder
	for _, token := range strings.Split(ptr, "/") {
		token = pointerUnescaper.Replace(token)
		switch {
		case token == "":
		case isIndex(token):
			b.WriteString("[" + token + "]")
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(token)
		}
	}
	return b.String()
}

func isIndex(token string) bool {
	_, err := strconv.ParseUint(token, 10, 0)
	return err == nil
}
