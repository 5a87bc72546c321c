// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder implements ai.Embedder without any external service so that
// ingestion and storage tests run offline with deterministic vectors.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("model offline")
//	}
//
//	// Check what was embedded
//	count := embedder.CallCount()
//	texts := embedder.Texts()
//
// # Default Behavior
//
// Vectors are derived from an FNV hash of the text and scaled to unit
// length, so identical texts always produce identical vectors.
package mock
