package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON pulls the JSON payload out of a model reply. It accepts bare
// JSON, JSON inside a ```json fence, or JSON with surrounding chatter, and
// validates the result parses.
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidJSON
	}

	candidates := []string{text}
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		candidates = append([]string{strings.TrimSpace(m[1])}, candidates...)
	}
	if i := strings.IndexAny(text, "{["); i > 0 {
		candidates = append(candidates, text[i:])
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(c), &v); err == nil {
			return json.RawMessage(c), nil
		}
		// Chatter after the JSON value: reparse just the first value.
		dec := json.NewDecoder(strings.NewReader(c))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %.80s", ErrInvalidJSON, text)
}
