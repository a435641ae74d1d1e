package models

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAILLM generates argument sets with OpenAI's chat completion API.
type OpenAILLM struct {
	Client *openai.Client
	Model  string
}

// NewOpenAILLM constructs a client. It reads OPENAI_API_KEY from the env,
// falling back to OPENAI_KEY.
func NewOpenAILLM(model string) *OpenAILLM {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY")
	}
	return &OpenAILLM{Client: openai.NewClient(apiKey), Model: model}
}

// Generate sends the synthesis prompt as a system message and returns the
// trimmed completion text. Temperature and token budget are kept modest since
// the reply is a single small JSON object.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (any, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.Model,
		Temperature: 0.7,
		MaxTokens:   500,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Agent = (*OpenAILLM)(nil)
