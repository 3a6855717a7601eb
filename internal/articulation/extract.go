// Package articulation turns raw model responses back into structured data.
// Models are asked for JSON but routinely wrap it in markdown fences or
// surround it with prose; this package recovers the payload either way.
package articulation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the JSON object text embedded in a model response.
// Fenced ```json blocks are preferred; otherwise the first complete
// top-level {...} span in the text is used.
func ExtractJSON(response string) (string, error) {
	if block, ok := fencedBlock(response); ok {
		// A fence may still carry leading prose inside it; fall through to
		// the scanner if the fenced content is not itself an object.
		if candidate := firstObject(block); candidate != "" {
			return candidate, nil
		}
	}

	if candidate := firstObject(response); candidate != "" {
		return candidate, nil
	}

	return "", fmt.Errorf("no JSON object found in response (%d bytes)", len(response))
}

// Decode extracts the JSON payload from a model response and unmarshals
// it into out. Structural mismatches surface as errors rather than
// silently defaulted fields.
func Decode(response string, out any) error {
	raw, err := ExtractJSON(response)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("malformed JSON in response: %w", err)
	}
	return nil
}

// fencedBlock returns the content of the first markdown code fence,
// preferring a ```json fence over a bare ``` fence.
func fencedBlock(s string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(s, marker)
		if start < 0 {
			continue
		}
		start += len(marker)
		end := strings.Index(s[start:], "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(s[start : start+end]), true
	}
	return "", false
}

// firstObject scans s for the first complete top-level JSON object.
// It tracks brace depth with string and escape awareness so braces
// inside JSON strings do not confuse the boundary detection. Iterating
// bytes is safe for the ASCII delimiters involved: UTF-8 guarantees
// they never appear inside a multi-byte sequence.
func firstObject(s string) string {
	var depth int
	var inString, escape bool
	start := -1

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1]
				}
			}
		}
	}

	return ""
}
