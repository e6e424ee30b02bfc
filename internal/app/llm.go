package app

import (
	"context"
	"time"

	"docqa/internal/ai"
)

// Adapters binding the OpenAI-compatible client to the rag package's
// Generator and Embedder interfaces, with a bounded timeout per upstream
// call so a hung collaborator cannot stall a request indefinitely.

type llmGenerator struct {
	client  *ai.OpenAICompatibleClient
	timeout time.Duration
}

func NewLLMGenerator(client *ai.OpenAICompatibleClient, timeout time.Duration) *llmGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &llmGenerator{client: client, timeout: timeout}
}

func (g *llmGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var messages []ai.ChatMessage
	if system != "" {
		messages = append(messages, ai.ChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: user})
	return g.client.Complete(callCtx, messages)
}

type llmEmbedder struct {
	client  *ai.OpenAICompatibleClient
	timeout time.Duration
}

func NewLLMEmbedder(client *ai.OpenAICompatibleClient, timeout time.Duration) *llmEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &llmEmbedder{client: client, timeout: timeout}
}

func (e *llmEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.client.Embed(callCtx, text)
}

func (e *llmEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.client.EmbedBatch(callCtx, texts)
}
