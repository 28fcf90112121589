package config

import (
	"os"
	"strings"
)

// ResolveSecret expands a credential reference.
// "env:NAME" reads an environment variable, "file:PATH" reads a file, anything else is literal.
func ResolveSecret(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "env:"):
		return strings.TrimSpace(os.Getenv(strings.TrimPrefix(ref, "env:")))
	case strings.HasPrefix(ref, "file:"):
		raw, err := os.ReadFile(strings.TrimPrefix(ref, "file:"))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(raw))
	default:
		return ref
	}
}
