package config

import (
	"regexp"
	"strings"
)

var nonPackageChars = regexp.MustCompile(`[^a-z0-9_]`)

// SanitizePackageName derives a package identifier from a project name. The
// result always matches ^[a-z][a-z0-9_]*$ or is the literal fallback "app":
// the name is lowercased, every disallowed character becomes an underscore,
// an "app_" prefix is added when the result does not start with a letter, and
// surrounding underscores are trimmed.
func SanitizePackageName(name string) string {
	sanitized := nonPackageChars.ReplaceAllString(strings.ToLower(name), "_")

	if sanitized != "" {
		if c := sanitized[0]; c < 'a' || c > 'z' {
			sanitized = "app_" + sanitized
		}
	}

	sanitized = strings.Trim(sanitized, "_")

	if sanitized == "" {
		sanitized = "app"
	}

	return sanitized
}
