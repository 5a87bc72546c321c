package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector has the model's fixed dimensionality.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// normalizingEmbedder scales every vector produced by the wrapped embedder to unit length.
type normalizingEmbedder struct {
	next Embedder
}

// WithNormalization wraps an Embedder so that all returned vectors are unit length.
// Use it when the target index compares vectors by dot product as cosine similarity.
func WithNormalization(embedder Embedder) Embedder {
	if embedder == nil {
		return nil
	}
	if _, ok := embedder.(*normalizingEmbedder); ok {
		return embedder
	}
	return &normalizingEmbedder{next: embedder}
}

func (n *normalizingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := n.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return NormalizeVector(vector), nil
}

func (n *normalizingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := n.next.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range vectors {
		vectors[i] = NormalizeVector(vectors[i])
	}
	return vectors, nil
}
