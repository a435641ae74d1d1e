// Package params acquires concrete argument sets for tool invocations, either
// from a persisted per-tool cache or by asking a generative model to
// synthesize plausible values from the tool's parameter schema.
package params

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Protocol-Lattice/go-probe/src/models"
)

// Provider yields a concrete argument set for one tool.
type Provider interface {
	Arguments(ctx context.Context, toolName string, schema map[string]any) (map[string]any, error)
}

// promptTemplate is the synthesis contract: the model sees the tool name and
// its parameter descriptors and must answer with one bare JSON object.
const promptTemplate = `You are a helpful assistant generating example input for a tool.

Tool name: %s
Here are its parameter fields and their descriptions as JSON:
%s

Please respond ONLY with a valid JSON dictionary containing realistic values for each parameter.
Do NOT explain anything. Just return the JSON.
`

// ModelProvider synthesizes arguments with a generative model, consulting and
// populating a per-tool disk cache.
type ModelProvider struct {
	Model models.Agent
	Cache *DiskCache
}

func NewModelProvider(model models.Agent, cache *DiskCache) *ModelProvider {
	return &ModelProvider{Model: model, Cache: cache}
}

// Arguments returns the cached argument set when one exists, otherwise asks
// the model, parses its reply and persists the result before returning it.
func (p *ModelProvider) Arguments(ctx context.Context, toolName string, schema map[string]any) (map[string]any, error) {
	if p.Cache != nil {
		if args, ok, err := p.Cache.Load(toolName); err == nil && ok && len(args) > 0 {
			return args, nil
		}
	}
	if p.Model == nil {
		return nil, errors.New("no model configured")
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	reply, err := p.Model.Generate(ctx, fmt.Sprintf(promptTemplate, toolName, schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("generate arguments: %w", err)
	}

	args, err := parseArguments(fmt.Sprint(reply))
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		if err := p.Cache.Save(toolName, args); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// parseArguments decodes a model reply into an argument mapping, tolerating a
// fenced code block around the JSON object.
func parseArguments(reply string) (map[string]any, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var args map[string]any
	if err := json.Unmarshal([]byte(reply), &args); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}
	return args, nil
}
