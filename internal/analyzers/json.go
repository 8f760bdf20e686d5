package analyzers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON strips markdown code fences the completion models like to wrap
// JSON responses in and returns the inner payload.
func extractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}

// decodeJSON unmarshals a fenced or bare JSON response into v.
func decodeJSON(text string, v any) error {
	payload := extractJSON(text)
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decoding analyzer response: %w", err)
	}
	return nil
}

// Optional borrower fields are pointers; prompts and fallbacks read them
// as zero when absent.
func floatValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
