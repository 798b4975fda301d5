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


package ai

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Config holds configuration for embedding providers.
type Config struct {
	// Kind selects the backend: "fastembed" (local ONNX) or "openai".
	// Default: "fastembed"
	Kind Kind

	// Model is the embedding model identifier.
	// Example: "sentence-transformers/all-MiniLM-L6-v2", "text-embedding-3-small"
	Model string

	// Host is the base URL for an OpenAI-compatible embedding API.
	// Only used when Kind is "openai".
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// CacheDir is where local models are downloaded and cached.
	// Only used when Kind is "fastembed".
	CacheDir string

	// MaxLength is the maximum input sequence length in tokens for local models.
	// Default: 512
	MaxLength int

	// Dimension is the expected vector length.
	// Default: 384
	Dimension int

	// BatchSize is how many texts are sent to the model at once.
	// Default: 256
	BatchSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithKind sets the embedding backend.
func WithKind(kind Kind) ConfigOption {
	return func(c *Config) {
		c.Kind = kind
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithCacheDir sets the model cache directory.
func WithCacheDir(dir string) ConfigOption {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithMaxLength sets the maximum input sequence length.
func WithMaxLength(n int) ConfigOption {
	return func(c *Config) {
		c.MaxLength = n
	}
}

// WithDimension sets the expected embedding dimension.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithBatchSize sets the number of texts embedded per model call.
func WithBatchSize(n int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// DefaultConfig returns a Config for the local all-MiniLM-L6-v2 model.
func DefaultConfig() *Config {
	return &Config{
		Kind:      KindFastEmbed,
		Model:     DefaultModel,
		Host:      "http://localhost:11434/v1",
		CacheDir:  "local_cache",
		MaxLength: 512,
		Dimension: DefaultDimension,
		BatchSize: 256,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithKind(KindOpenAI),
//	    WithHost("http://localhost:11434/v1"),
//	    WithModel("nomic-embed-text"),
//	    WithDimension(768),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It lowercases the backend kind and adds the /v1 suffix to the host for
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Kind = Kind(strings.ToLower(strings.TrimSpace(string(c.Kind))))
	if c.Kind == KindOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !slices.Contains(Kinds, c.Kind) {
		return fmt.Errorf("ai config: unknown embedding kind %q", c.Kind)
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Kind == KindOpenAI && c.Host == "" {
		return errors.New("ai config: Host is required for openai embeddings")
	}
	if c.Dimension <= 0 {
		return errors.New("ai config: Dimension must be positive")
	}
	if c.MaxLength <= 0 {
		return errors.New("ai config: MaxLength must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("ai config: BatchSize must be positive")
	}
	return nil
}
