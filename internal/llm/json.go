package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidJSON is returned when a provider response is not a JSON document.
var ErrInvalidJSON = errors.New("provider returned invalid JSON")

// ExtractJSON trims whitespace and markdown code fences and checks the payload is valid JSON.
func ExtractJSON(content string) (json.RawMessage, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" || !json.Valid([]byte(s)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(s), nil
}
