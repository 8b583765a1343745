package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// SanitizeFilename strips characters that are invalid in file names on
// common file systems. An empty result falls back to fallback.
func SanitizeFilename(name, fallback string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "\x00"}
	for _, ch := range invalid {
		name = strings.ReplaceAll(name, ch, "")
	}

	name = reSpaces.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")

	if name == "" {
		return fallback
	}

	return name
}
