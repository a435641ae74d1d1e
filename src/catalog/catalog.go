// Package catalog loads tool definitions from a JSON catalog document and
// filters them down to the invokable API tools a conformance run should cover.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// excludedCategories holds tool categories that are never probed. The set is
// deliberately a small hardcoded list; add entries here if needed.
var excludedCategories = map[string]struct{}{
	"langchaintool": {},
	"pubchem":       {},
}

// Tool is one invokable catalog entry, immutable once loaded.
//
// Properties keeps the decoded shape of inputSchema.properties as-is; the
// runner validates that it is a mapping before using it, so a malformed
// schema surfaces as a per-tool error instead of a load failure.
type Tool struct {
	Name        string
	Description string
	ToolType    string
	Properties  any
	Example     map[string]any
}

// rawTool mirrors the inbound catalog document. Category, inputSchema and
// exampleInput are kept raw because real catalogs carry them in several
// shapes (string or list categories, missing or non-object schemas).
type rawTool struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ToolType     string          `json:"toolType"`
	Category     json.RawMessage `json:"category"`
	InputSchema  json.RawMessage `json:"inputSchema"`
	ExampleInput json.RawMessage `json:"exampleInput"`
}

// Load reads a catalog document from disk and filters it to API tools.
func Load(path string) ([]Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document and keeps only entries whose toolType is
// "api" (case-insensitively) and whose category is not excluded, normalizing
// each into a Tool. Entries are returned in document order.
func Parse(data []byte) ([]Tool, error) {
	var entries []rawTool
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	tools := make([]Tool, 0, len(entries))
	for _, entry := range entries {
		if !strings.EqualFold(strings.TrimSpace(entry.ToolType), "api") {
			continue
		}
		if isExcludedCategory(decodeAny(entry.Category)) {
			continue
		}
		tools = append(tools, Tool{
			Name:        entry.Name,
			Description: entry.Description,
			ToolType:    entry.ToolType,
			Properties:  properties(entry.InputSchema),
			Example:     decodeObject(entry.ExampleInput),
		})
	}
	return tools, nil
}

// isExcludedCategory reports whether a category value lands in the exclusion
// set. Categories come as a single string or a sequence of strings; both are
// checked case-insensitively after trimming.
func isExcludedCategory(category any) bool {
	switch v := category.(type) {
	case string:
		_, excluded := excludedCategories[strings.ToLower(strings.TrimSpace(v))]
		return excluded
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if _, excluded := excludedCategories[strings.ToLower(strings.TrimSpace(s))]; excluded {
				return true
			}
		}
	}
	return false
}

// properties extracts inputSchema.properties, defaulting to an empty mapping
// when the schema or the field is absent or unreadable.
func properties(schema json.RawMessage) any {
	var parsed struct {
		Properties any `json:"properties"`
	}
	if len(schema) == 0 || json.Unmarshal(schema, &parsed) != nil || parsed.Properties == nil {
		return map[string]any{}
	}
	return parsed.Properties
}

func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// decodeObject returns the raw value as a mapping, or nil when it is absent
// or not an object. A non-object example simply falls back to synthesis.
func decodeObject(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
