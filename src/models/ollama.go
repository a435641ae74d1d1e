package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaLLM generates argument sets against a local Ollama server.
type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

// NewOllamaLLM constructs a client for OLLAMA_HOST, defaulting to the
// standard local address.
func NewOllamaLLM(model string) (*OllamaLLM, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}
	return &OllamaLLM{Client: ollama.NewClient(u, httpClient), Model: model}, nil
}

// Generate streams one completion and returns the accumulated text.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (any, error) {
	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
	}
	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return strings.TrimSpace(text.String()), nil
}

var _ Agent = (*OllamaLLM)(nil)
