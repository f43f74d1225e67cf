// Package status cleans provider error messages before they are persisted
// on work units or returned through the API.
package status

import (
	"regexp"
	"strings"
)

// StatusSanitizer redacts credentials and internal addresses from error
// messages and bounds their length
type StatusSanitizer struct {
	sensitivePatterns []*sensitivePattern
	maxLength         int
}

type sensitivePattern struct {
	pattern     *regexp.Regexp
	replacement string
	description string
}

// NewStatusSanitizer creates a sanitizer; maxLength <= 0 disables truncation
func NewStatusSanitizer(maxLength int) *StatusSanitizer {
	return &StatusSanitizer{
		sensitivePatterns: buildDefaultSensitivePatterns(),
		maxLength:         maxLength,
	}
}

func buildDefaultSensitivePatterns() []*sensitivePattern {
	return []*sensitivePattern{
		// Credentials
		{
			pattern:     regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`),
			replacement: "Bearer [REDACTED]",
			description: "bearer token",
		},
		{
			pattern:     regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`),
			replacement: "sk-[REDACTED]",
			description: "openai compatible api key",
		},
		{
			pattern:     regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{20,}`),
			replacement: "[REDACTED]",
			description: "google api key",
		},
		{
			pattern:     regexp.MustCompile(`(?i)([?&](?:key|api_key|apikey|access_token)=)[^&\s"']+`),
			replacement: "${1}[REDACTED]",
			description: "api key query parameter",
		},
		{
			pattern:     regexp.MustCompile(`(https?://)[^/\s:@]+:[^/\s@]+@`),
			replacement: "${1}[REDACTED]@",
			description: "url credentials",
		},

		// Internal IP addresses
		{
			pattern:     regexp.MustCompile(`\b10\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
			replacement: "[internal-ip]",
			description: "10.0.0.0/8",
		},
		{
			pattern:     regexp.MustCompile(`\b172\.(1[6-9]|2[0-9]|3[0-1])\.\d{1,3}\.\d{1,3}\b`),
			replacement: "[internal-ip]",
			description: "172.16.0.0/12",
		},
		{
			pattern:     regexp.MustCompile(`\b192\.168\.\d{1,3}\.\d{1,3}\b`),
			replacement: "[internal-ip]",
			description: "192.168.0.0/16",
		},
	}
}

// SanitizeSensitiveInfo removes credentials and internal addresses
func (s *StatusSanitizer) SanitizeSensitiveInfo(message string) string {
	if message == "" {
		return message
	}

	result := message
	for _, sp := range s.sensitivePatterns {
		result = sp.pattern.ReplaceAllString(result, sp.replacement)
	}
	return result
}

// Sanitize redacts the message and truncates it to maxLength bytes without
// splitting a UTF-8 sequence
func (s *StatusSanitizer) Sanitize(message string) string {
	result := s.SanitizeSensitiveInfo(message)
	if s.maxLength <= 0 || len(result) <= s.maxLength {
		return result
	}
	return strings.ToValidUTF8(result[:s.maxLength], "")
}
