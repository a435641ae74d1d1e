package models

import "context"

// DummyLLM returns a canned reply and counts calls. It exercises the harness
// without network access; the default reply is a minimal valid argument set.
type DummyLLM struct {
	Response string
	Err      error
	Calls    int
}

func NewDummyLLM(response string) *DummyLLM {
	if response == "" {
		response = `{"query": "example"}`
	}
	return &DummyLLM{Response: response}
}

func (d *DummyLLM) Generate(_ context.Context, _ string) (any, error) {
	d.Calls++
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Response, nil
}

var _ Agent = (*DummyLLM)(nil)
