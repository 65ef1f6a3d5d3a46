package ai

import (
	"context"
)

// RawModelResponse is the unvalidated output of one completion call
type RawModelResponse struct {
	Content          string
	PromptTokens     int64
	CompletionTokens int64
	Model            string
}

// CompletionClient sends one system+user prompt pair to a chat model in
// JSON mode. Implementations do not retry.
type CompletionClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*RawModelResponse, error)
}

// Ensure the OpenAI client implements CompletionClient
var _ CompletionClient = (*OpenAIClient)(nil)
