// Package probe runs conformance tests against a catalog of remotely
// invokable tools: for each tool it acquires a plausible argument set, invokes
// the tool through its JSON-RPC endpoint and classifies the reply.
package probe

import (
	"context"

	"github.com/Protocol-Lattice/go-probe/src/catalog"
	"github.com/Protocol-Lattice/go-probe/src/params"
)

// Record is the outcome of probing one tool. Exactly one Record is produced
// per catalog entry: either a full result or an early-exit record carrying
// only Name and Err.
type Record struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ToolType    string         `json:"type,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
	Output      *Response      `json:"output,omitempty"`
	Status      Status         `json:"status,omitempty"`
	Err         string         `json:"error,omitempty"`
}

// Runner drives one conformance pass over a tool catalog, strictly
// sequentially and in catalog order.
type Runner struct {
	Tools    []catalog.Tool
	Provider params.Provider
	Client   *Client
}

// Run probes every catalog entry and yields one Record per tool on the
// returned channel as soon as it is available, so a consumer sees partial
// progress before the full catalog completes. The channel is unbuffered and
// closed when the run ends. Per-tool faults never stop the run; cancelling
// the context stops it between tools.
func (r *Runner) Run(ctx context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for _, tool := range r.Tools {
			select {
			case out <- r.probe(ctx, tool):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (r *Runner) probe(ctx context.Context, tool catalog.Tool) Record {
	props, ok := tool.Properties.(map[string]any)
	if !ok {
		return Record{Name: tool.Name, Err: "Invalid parameter properties"}
	}

	input := tool.Example
	if len(input) == 0 {
		if r.Provider == nil {
			return Record{Name: tool.Name, Err: "Failed to generate sample input"}
		}
		generated, err := r.Provider.Arguments(ctx, tool.Name, props)
		if err != nil || len(generated) == 0 {
			return Record{Name: tool.Name, Err: "Failed to generate sample input"}
		}
		input = generated
	}

	resp := r.Client.Call(ctx, tool.Name, input)
	return Record{
		Name:        tool.Name,
		Description: tool.Description,
		ToolType:    tool.ToolType,
		Parameters:  props,
		Input:       input,
		Output:      &resp,
		Status:      Classify(resp),
	}
}
