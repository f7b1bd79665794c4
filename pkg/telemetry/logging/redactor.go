package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Credential-shaped values are scrubbed from log output so a debug-level
// dump of request headers can never leak an API key.
var credentialPatterns = []*regexp.Regexp{
	// Bearer tokens in header values
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]{8,}`),
	// Common API key shapes: sk-..., or provider-prefixed long tokens
	regexp.MustCompile(`\bsk-[A-Za-z0-9-]{16,}\b`),
	regexp.MustCompile(`\b(?:hf|or|vk|tg|fl)_[A-Za-z0-9]{16,}\b`),
}

// Attribute keys whose values are always fully redacted.
var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"authorization": true,
	"credential":    true,
	"token":         true,
}

const redactedPlaceholder = "[REDACTED]"

// redactAttr is a slog ReplaceAttr hook scrubbing credential material.
func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(attr.Key)] {
		return slog.String(attr.Key, redactedPlaceholder)
	}
	if attr.Value.Kind() == slog.KindString {
		attr.Value = slog.StringValue(RedactString(attr.Value.String()))
	}
	return attr
}

// RedactString replaces credential-shaped substrings with a placeholder.
func RedactString(s string) string {
	for _, pattern := range credentialPatterns {
		s = pattern.ReplaceAllString(s, redactedPlaceholder)
	}
	return s
}
