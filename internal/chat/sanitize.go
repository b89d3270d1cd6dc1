package chat

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// CleanOneLine flattens s for a single sidebar row: fenced code blocks are
// dropped, a body that is nothing but a JSON object is dropped, whitespace is
// collapsed and the result is cut to maxLen runes with a trailing "…".
// It reports whether anything was removed or rewritten and whether it was
// truncated.
func CleanOneLine(s string, maxLen int) (out string, changed, truncated bool) {
	orig := s

	for {
		i := strings.Index(s, "```")
		if i < 0 {
			break
		}
		j := strings.Index(s[i+3:], "```")
		if j < 0 {
			s = s[:i]
			break
		}
		s = s[:i] + s[i+3+j+3:]
	}

	if ss := strings.TrimSpace(s); looksLikeJSONObject(ss) {
		var js any
		if json.Unmarshal([]byte(ss), &js) == nil {
			s = ""
		}
	}

	s = strings.Join(strings.Fields(s), " ")

	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen]) + "…"
		truncated = true
	}
	return s, s != orig, truncated
}

func looksLikeJSONObject(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	return len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}'
}

// OneLine is CleanOneLine without truncation or reporting.
func OneLine(s string) string {
	out, _, _ := CleanOneLine(s, 0)
	return out
}
