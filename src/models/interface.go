// Package models provides the generative-model backends used to synthesize
// example tool arguments. Each backend is a single-turn text generator; the
// prompt carries the tool name and parameter schema, the reply is expected to
// be one JSON object.
package models

import "context"

// Agent is a minimal single-turn generation interface.
type Agent interface {
	Generate(ctx context.Context, prompt string) (any, error)
}
