// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the text embedding abstraction used by bookvec.
//
// The ingestion pipeline depends only on the Embedder interface, a capability
// that turns a description into a fixed-length vector. Concrete backends live
// in sub-packages:
//
//   - ai/openai: OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo
//   - ai/gemini: Google Gemini embeddings via google.golang.org/genai
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, gemini.NewEmbedder) return the
// ai.Embedder interface. Test constructors (mock.NewMockEmbedder) return
// concrete types so tests can inspect call counts and inject behavior.
//
// # Normalization
//
// Indexes compared by cosine similarity expect unit-length vectors. Wrap any
// Embedder with WithNormalization, or call NormalizeVector directly:
//
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if cfg.UnitVectors {
//	    embedder = ai.WithNormalization(embedder)
//	}
//	vector, err := embedder.EmbedText(ctx, "A detective story")
package ai
