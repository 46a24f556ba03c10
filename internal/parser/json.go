package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model responses are usually bare JSON but sometimes arrive fenced or
// wrapped in prose.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)`{3}(?:json|javascript|js)?\\s*\\n?(.*?)\\n?`{3}")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	objectRegex        = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseJSON decodes text into T, retrying after fence removal, trailing
// comma cleanup and object extraction.
func parseJSON[T any](text string) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return zero, fmt.Errorf("empty response")
	}

	candidates := []string{trimmed}
	if match := codeFenceRegex.FindStringSubmatch(trimmed); match != nil {
		candidates = append(candidates, strings.TrimSpace(match[1]))
	}
	last := candidates[len(candidates)-1]
	candidates = append(candidates, trailingCommaRegex.ReplaceAllString(last, "$1"))
	if obj := objectRegex.FindString(last); obj != "" {
		candidates = append(candidates, obj, trailingCommaRegex.ReplaceAllString(obj, "$1"))
	}

	var lastErr error
	for _, candidate := range candidates {
		var result T
		if err := json.Unmarshal([]byte(candidate), &result); err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}

	return zero, fmt.Errorf("all JSON parsing strategies failed: %w", lastErr)
}

// truncate shortens s for log output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
