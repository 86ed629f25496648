// Package security provides credential masking and input validation.
package security

import (
	"regexp"
	"strings"
)

// sensitivePatterns matches credential-shaped spans in free text. Error
// chains and model output can both carry upstream body snippets, so
// anything key-shaped is masked before it reaches a log line or a caller.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|shared[_-]?secret|secret[_-]?key|access[_-]?token|auth[_-]?token|bearer|password)[=:\s]+["']?([^\s"']+)["']?`),
	regexp.MustCompile(`(?i)(sk-[A-Za-z0-9_-]{20,})`), // OpenAI-style keys
}

// maskSensitiveInString masks sensitive patterns in a string.
func maskSensitiveInString(input string) string {
	result := input

	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			// Keep the label, mask the value.
			parts := strings.SplitN(match, "=", 2)
			if len(parts) == 2 {
				return parts[0] + "=" + MaskCredential(strings.Trim(parts[1], "\"' "))
			}
			parts = strings.SplitN(match, ":", 2)
			if len(parts) == 2 {
				return parts[0] + ":" + MaskCredential(strings.Trim(parts[1], "\"' "))
			}
			// Bare keys like sk-... have no label; mask the whole match.
			return MaskCredential(match)
		})
	}

	return result
}
