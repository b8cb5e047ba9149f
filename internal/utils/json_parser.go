package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	thinkBlockRe    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fencedJSONRe    = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedAnyRe     = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharsRe  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON extracts and parses JSON from model output that may contain:
// - Pure JSON
// - A reasoning preamble in <think> tags
// - JSON wrapped in markdown code blocks (```json ... ```)
// - JSON with surrounding text
// - Trailing commas or unquoted keys
func ParseAIJSON(input string, target interface{}) error {
	input = StripReasoning(input)
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input}
	if extracted := extractFromMarkdown(input); extracted != "" {
		candidates = append(candidates, extracted)
	}
	if extracted := extractJSONObject(input); extracted != "" {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	// Last resort: repair the most specific candidate
	repaired := cleanAndFixJSON(candidates[len(candidates)-1])
	if err := json.Unmarshal([]byte(repaired), target); err == nil {
		return nil
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// StripReasoning removes <think> blocks emitted by reasoning models before the answer
func StripReasoning(input string) string {
	s := thinkBlockRe.ReplaceAllString(input, "")
	// An unterminated block means the answer follows the last closing tag, if any
	if i := strings.LastIndex(s, "</think>"); i >= 0 {
		s = s[i+len("</think>"):]
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "\uFEFF"))
}

// extractFromMarkdown extracts JSON from markdown code blocks
func extractFromMarkdown(input string) string {
	if matches := fencedJSONRe.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	if matches := fencedAnyRe.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") {
			return content
		}
	}
	return ""
}

// extractJSONObject finds the first balanced JSON object in surrounding text
func extractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	for i, ch := range input[start:] {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[start : start+i+1]
			}
		}
	}
	return ""
}

// cleanAndFixJSON attempts to fix common formatting mistakes in model output
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return controlCharsRe.ReplaceAllString(s, "")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
