// Package embedding provides text embedding clients and the dataset-signature
// cache that avoids recomputing embeddings for an unchanged article store.
package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxBatchSize is the per-request limit on the batch embedding endpoint.
const maxBatchSize = 100

// Client is an abstraction over embedding providers.
type Client interface {
	// EmbedTexts returns one vector per input text, aligned by index.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Model returns the model identifier used for embedding.
	Model() string
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini embedding models.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini embedding client. A construction
// failure here is fatal to the recommend stage: no output may be written.
func NewGeminiClient(ctx context.Context, model, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// EmbedTexts embeds all texts via the batch endpoint, chunked to the
// per-request limit.
func (c *GeminiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(c.model)

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		batch := em.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}

		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), end-start)
		}

		for _, e := range resp.Embeddings {
			vectors = append(vectors, e.Values)
		}
	}

	return vectors, nil
}

// Model returns the embedding model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
