package oracle

import (
	"encoding/json"
	"strings"
)

// extractObject locates the first balanced JSON object embedded in free text
// and decodes it into dst. Reasoning backends wrap their JSON in prose or
// markdown fences often enough that plain unmarshalling is not an option.
func extractObject(raw string, dst any) bool {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return json.Unmarshal([]byte(raw[start:i+1]), dst) == nil
			}
		}
	}

	return false
}
