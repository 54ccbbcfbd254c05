package openai

import (
	"strings"
	"unicode"
)

// cleanResponse strips <think> blocks, markdown code fences and surrounding
// whitespace from model output. An unterminated think block drops the rest.
func cleanResponse(s string) string {
	for {
		open := strings.Index(s, "<think>")
		if open < 0 {
			break
		}
		end := strings.Index(s[open:], "</think>")
		if end < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + s[open+end+len("</think>"):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// sanitizeName drops control characters and collapses whitespace in an
// ingredient name before it is placed in a prompt.
func sanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// isKeyRune reports whether r may appear in a bare JSON object key.
func isKeyRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
