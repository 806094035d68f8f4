package client

import (
	"encoding/json"
	"strings"

	"github.com/menta2k/sketchpad/pkg/types"
)

// ParsePrediction parses a model reply into a Prediction. Replies that are
// not usable JSON yield an empty "none" prediction rather than an error.
func ParsePrediction(raw string) (*types.Prediction, error) {
	raw = SanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return fallback("Model returned non-JSON response"), nil
	}

	var result types.Prediction
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return fallback("Failed to parse model response"), nil
	}
	if result.Confidences == nil {
		result.Confidences = map[string]float64{}
	}
	return &result, nil
}

func fallback(description string) *types.Prediction {
	return &types.Prediction{
		Label:       types.NoPrediction,
		Confidences: map[string]float64{},
		Description: description,
	}
}

// SanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = stripComments(raw)
	raw = stripTrailingCommas(raw)

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// stripComments removes // and /* */ comments that are not inside a JSON
// string
func stripComments(raw string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
		case strings.HasPrefix(raw[i:], "//"):
			end := strings.IndexByte(raw[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end - 1
			continue
		case strings.HasPrefix(raw[i:], "/*"):
			end := strings.Index(raw[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// stripTrailingCommas drops commas that directly precede } or ] outside
// JSON strings
func stripTrailingCommas(raw string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		} else if c == '"' {
			inString = true
		} else if c == ',' {
			rest := strings.TrimLeft(raw[i+1:], " \t\r\n")
			if strings.HasPrefix(rest, "}") || strings.HasPrefix(rest, "]") {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
