package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg
	if sanitized.Snapshot.Passphrase != "" {
		sanitized.Snapshot.Passphrase = maskSecret(sanitized.Snapshot.Passphrase)
	}
	sanitized.Log.Output = nil
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
