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


// Package ai provides abstractions for the text embedding models used by cyclonekb.
//
// The retrieval pipeline treats the embedding model as an opaque collaborator
// that turns text into a fixed-length vector. This package defines that
// contract so indexing and search depend on an interface rather than a model.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - Provider: Owns an Embedder, reports its dimension, releases its resources
//
// # Implementation Packages
//
//   - ai/fastembed: Local ONNX sentence-transformers (all-MiniLM-L6-v2 by default)
//   - ai/openai: OpenAI-compatible embedding APIs
//   - ai/mock: Deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors (fastembed.NewProvider, openai.NewProvider) return the
// ai.Provider interface. Test constructors (mock.NewMockEmbedder) return
// concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithCacheDir("/var/cache/cyclonekb"))
//	provider, err := fastembed.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "What is the normal operating temperature?")
//
// Vectors are compared by inner product, so callers normalize them with
// NormalizeVector before indexing.
package ai
