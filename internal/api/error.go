package api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Error is returned for any non-2xx backend response. Message is the
// best-effort human-readable body; Status the HTTP status code.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// newError extracts a message from a response body. Preference order: JSON
// "message", then "title", then an "errors" validation map joined as one
// "field: message" line per field, then the raw text, then a templated
// fallback naming the operation.
func newError(status int, operation string, body []byte) *Error {
	msg := extractMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("%s failed with status %d", operation, status)
	}
	return &Error{Status: status, Message: msg}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return trimmed
	}

	if s, ok := payload["message"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if s, ok := payload["title"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if errs, ok := payload["errors"].(map[string]any); ok && len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var lines []string
		for _, field := range fields {
			switch v := errs[field].(type) {
			case []any:
				for _, item := range v {
					if s, ok := item.(string); ok {
						lines = append(lines, fmt.Sprintf("%s: %s", field, s))
					}
				}
			case string:
				lines = append(lines, fmt.Sprintf("%s: %s", field, v))
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	}
	return trimmed
}

var (
	fileLineRef = regexp.MustCompile(`\S+\.\w+:\d+`)
	headerToken = regexp.MustCompile(`^[A-Za-z-]+:\s`)
)

const maxMessageRunes = 200

// CleanMessage strips stack-trace-looking lines from a backend error and
// bounds its length to the first sentence or 200 runes, whichever is
// shorter. Domain-conflict messages ("port already busy") pass through
// intact.
func CleanMessage(msg string) string {
	var kept []string
	for _, line := range strings.Split(msg, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}
		if strings.HasPrefix(trimmedLine, "at ") {
			continue
		}
		if fileLineRef.MatchString(trimmedLine) {
			continue
		}
		if headerToken.MatchString(trimmedLine) {
			continue
		}
		kept = append(kept, trimmedLine)
	}

	out := strings.Join(kept, " ")
	if out == "" {
		out = strings.TrimSpace(msg)
	}

	if idx := strings.Index(out, ". "); idx > 0 {
		out = out[:idx+1]
	}
	runes := []rune(out)
	if len(runes) > maxMessageRunes {
		out = string(runes[:maxMessageRunes])
	}
	return out
}
