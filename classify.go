package probe

import (
	"encoding/json"
	"strings"
)

// Status is the three-way verdict assigned to an invocation response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusUnknown Status = "unknown"
)

// wrapNotice is a known cosmetic server-side error: the server raises isError
// for tools that return bare values instead of wrapping them per their output
// schema, even though the call itself worked. It is an allowlist of exactly
// one pattern and must not grow into a broader substring search.
const wrapNotice = "Tools should wrap non-dict values based on their output_schema"

// Classify assigns a status to a decoded invocation response. A transport
// fault carries no well-formed result envelope and classifies as unknown.
func Classify(resp Response) Status {
	if resp.Fault != nil {
		return StatusUnknown
	}
	return ClassifyValue(resp.Value)
}

// ClassifyValue classifies a raw response value. Strings are parsed as JSON
// first. The verdict follows result.isError three ways: false means success,
// true means error unless the content carries the wrap notice, and anything
// else (absent field, wrong type, unexpected structure) means unknown.
// ClassifyValue never fails; malformed input collapses to unknown.
func ClassifyValue(value any) Status {
	if s, ok := value.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return StatusUnknown
		}
		value = parsed
	}

	envelope, ok := value.(map[string]any)
	if !ok {
		return StatusUnknown
	}
	result, _ := envelope["result"].(map[string]any)
	isError, ok := result["isError"].(bool)
	if !ok {
		return StatusUnknown
	}
	if !isError {
		return StatusSuccess
	}
	if contentHasWrapNotice(result["content"]) {
		return StatusSuccess
	}
	return StatusError
}

// contentHasWrapNotice reports whether any element of a content sequence is a
// mapping whose text field contains the wrap notice. Non-sequence content
// never matches.
func contentHasWrapNotice(content any) bool {
	items, ok := content.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := m["text"].(string); ok && strings.Contains(text, wrapNotice) {
			return true
		}
	}
	return false
}
