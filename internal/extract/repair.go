package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports a model reply that could not be parsed even after the
// brace-block fallback. It keeps the raw reply so callers can log the
// data-quality issue; the conversational layer presents it as "no metrics
// found", never as an error.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model reply: %s", e.Reason)
}

// DecodeReply parses raw as strict JSON into v. When the reply wraps the
// object in explanatory prose, it falls back to the first balanced
// brace-delimited block.
func DecodeReply(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if json.Unmarshal([]byte(trimmed), v) == nil {
		return nil
	}

	block, ok := firstJSONObject(trimmed)
	if !ok {
		return &ParseError{Reason: "no brace-delimited block in reply", Raw: raw}
	}
	if err := json.Unmarshal([]byte(block), v); err != nil {
		return &ParseError{Reason: fmt.Sprintf("brace block is not valid JSON: %v", err), Raw: raw}
	}
	return nil
}

// ParseReply decodes a metrics-extraction reply into a Candidate.
func ParseReply(raw string) (Candidate, error) {
	var c Candidate
	if err := DecodeReply(raw, &c); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// firstJSONObject scans for the first top-level {...} block, tracking brace
// depth and skipping braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
