package utils

import (
	"encoding/json"
	"os"
	"strings"
)

// UnwrapPassage extracts the narration text from a story file. JSON objects
// carrying a "story" (or else "description") field yield that field;
// anything else is treated as plain text.
func UnwrapPassage(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var doc struct {
			Story       string `json:"story"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
			if s := strings.TrimSpace(doc.Story); s != "" {
				return s
			}
			if s := strings.TrimSpace(doc.Description); s != "" {
				return s
			}
		}
	}
	return trimmed
}

// ReadPassage reads a story file and unwraps it
func ReadPassage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return UnwrapPassage(data), nil
}
