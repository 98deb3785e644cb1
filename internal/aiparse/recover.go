// Package aiparse recovers JSON from model responses that arrive wrapped in
// markdown, truncated, or padded with prose. Extraction is an ordered
// pipeline of strategies, each feeding the same parser; the first candidate
// that parses wins.
package aiparse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// extractor produces one candidate JSON string from raw text, or "" when
// the strategy does not apply.
type extractor struct {
	name    string
	extract func(text string) string
}

// 전략 순서 고정: 코드블록 → 닫히지 않은 코드블록 → 중괄호 스캔 → 원문
var strategies = []extractor{
	{name: "fenced_block", extract: extractFencedBlock},
	{name: "unclosed_fence", extract: extractUnclosedFence},
	{name: "balanced_braces", extract: extractBalancedBraces},
	{name: "raw_text", extract: strings.TrimSpace},
}

var (
	fencedRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	unclosedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*)$")
	controlRe  = regexp.MustCompile(`[\x00-\x1F\x7F]`)
)

// Parse recovers a JSON object from a model response. Each strategy's
// candidate is handed to the same parser (with a control-character cleanup
// retry); the pipeline short-circuits on first success.
func Parse(text string, v interface{}) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty response")
	}

	var lastErr error
	for _, s := range strategies {
		candidate := s.extract(text)
		if candidate == "" {
			continue
		}
		if err := parseCandidate(candidate, v); err != nil {
			lastErr = fmt.Errorf("%s: %w", s.name, err)
			continue
		}
		return nil
	}

	return fmt.Errorf("no strategy produced valid JSON: %w", lastErr)
}

// ParseArray recovers a JSON array, additionally attempting partial-array
// recovery: a truncated response keeps the complete leading elements.
func ParseArray(text string, v interface{}) error {
	if err := Parse(text, v); err == nil {
		return nil
	}

	candidate := extractBalancedArray(text)
	if candidate == "" {
		return fmt.Errorf("no recoverable array in response")
	}
	return parseCandidate(candidate, v)
}

// parseCandidate is the single fixed parser behind every strategy.
func parseCandidate(candidate string, v interface{}) error {
	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	// 제어문자 제거 후 1회 재시도
	cleaned := controlRe.ReplaceAllString(candidate, "")
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return err
	}
	return nil
}

func extractFencedBlock(text string) string {
	m := fencedRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractUnclosedFence handles responses cut off mid-stream after an
// opening fence.
func extractUnclosedFence(text string) string {
	if strings.Count(text, "```")%2 == 0 {
		return ""
	}
	m := unclosedRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractBalancedBraces scans for the first balanced top-level object,
// respecting strings and escapes.
func extractBalancedBraces(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractBalancedArray returns the longest prefix of the first array whose
// elements are complete, closing the array itself if truncated.
func extractBalancedArray(text string) string {
	if s := extractBalanced(text, '[', ']'); s != "" {
		return s
	}

	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}

	// 잘린 배열: 마지막으로 완결된 요소까지 살리고 닫는다
	depth := 0
	inString := false
	escaped := false
	lastComplete := -1
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 1 {
				lastComplete = i
			}
		}
	}

	if lastComplete < 0 {
		return ""
	}
	return text[start:lastComplete+1] + "]"
}

func extractBalanced(text string, openCh, closeCh byte) string {
	start := strings.IndexByte(text, openCh)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == openCh:
			depth++
		case c == closeCh:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
