// Package gemini implements ai.Embedder on Google's Gemini embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/bookvec/ai"
	"google.golang.org/genai"
)

// taskType tells the model the vectors will be stored and searched later.
const taskType = "RETRIEVAL_DOCUMENT"

// Embedder wraps a genai.Client to implement ai.Embedder.
type Embedder struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a Gemini embedder from the configuration.
// The config must use the gemini provider and carry an API key.
func NewEmbedder(ctx context.Context, config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderGemini {
		return nil, fmt.Errorf("gemini embedder: unexpected provider %q", config.Provider)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return NewEmbedderWithClient(client, config.EmbeddingModel), nil
}

// NewEmbedderWithClient creates an embedder around an existing client.
// modelName: the embedding model to use (e.g., "text-embedding-004")
func NewEmbedderWithClient(client *genai.Client, modelName string) *Embedder {
	return &Embedder{
		client: client,
		model:  modelName,
		logger: slog.Default().With("component", "gemini-embedder"),
	}
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple texts in one request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("generating embeddings for texts", "model", e.model, "count", len(texts))

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{
				{Text: text},
			},
		}
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: taskType,
	})
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, errors.New("empty embedding vector")
		}
		vectors[i] = embedding.Values
	}
	return vectors, nil
}
