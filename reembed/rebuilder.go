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

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
)

// Config holds configuration for a rebuild.
type Config struct {
	// BatchSize is the number of chunks embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Stats summarizes a finished rebuild.
type Stats struct {
	Chunks  int
	Elapsed time.Duration
}

// Rebuilder copies every chunk of a source repository into an empty
// destination, embedding each with the destination provider.
type Rebuilder struct {
	src       storage.ChunkRepository
	dst       storage.ChunkRepository
	index     storage.VectorIndex
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
	processor *BatchProcessor
	iterator  *ChunkIterator
}

// NewRebuilder creates a new rebuilder. index must be the destination's
// index and accept vectors of the provider's dimension.
// progress: where to write progress output (typically os.Stderr)
func NewRebuilder(src, dst storage.ChunkRepository, index storage.VectorIndex, provider ai.Provider, config *Config, progress io.Writer) (*Rebuilder, error) {
	if src == dst {
		return nil, ErrSameRepository
	}
	if provider.Dimension() != index.Dimension() {
		return nil, fmt.Errorf("%w: provider %s produces %d, index holds %d",
			ai.ErrDimensionMismatch, provider.Model(), provider.Dimension(), index.Dimension())
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Rebuilder{
		src:       src,
		dst:       dst,
		index:     index,
		config:    config,
		progress:  progress,
		logger:    slog.Default().With("component", "reembed"),
		processor: NewBatchProcessor(dst, index, provider.Embedder(), config.MaxRetries, config.RetryDelay),
		iterator:  NewChunkIterator(src, config.BatchSize),
	}, nil
}

// Run copies all source chunks. On failure the destination keeps the
// batches committed so far and the returned Stats count them.
func (r *Rebuilder) Run(ctx context.Context) (Stats, error) {
	existing, err := r.dst.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count destination chunks: %w", err)
	}
	if existing > 0 || r.index.Count() > 0 {
		return Stats{}, fmt.Errorf("%w: %d chunks", ErrDestinationNotEmpty, existing)
	}

	total, err := r.src.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count source chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in source (0 chunks)\n")
		return Stats{}, nil
	}

	fmt.Fprintf(r.progress, "Re-embedding %d chunks (batch size: %d)\n", total, r.iterator.batchSize)
	r.logger.Info("rebuild started", "chunks", total, "batch_size", r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(batch []*core.Chunk) error {
		added, err := r.processor.Process(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to process batch starting at chunk %d: %w", batch[0].Id, err)
		}
		tracker.Add(len(added))
		return nil
	})
	tracker.Finish()

	stats := Stats{Chunks: tracker.Current(), Elapsed: tracker.Elapsed()}
	if err != nil {
		r.logger.Error("rebuild failed", "copied", stats.Chunks, "err", err)
		return stats, err
	}

	fmt.Fprintf(r.progress, "Re-embedding complete. Copied %d chunks in %v\n",
		stats.Chunks, stats.Elapsed.Round(time.Millisecond))
	r.logger.Info("rebuild finished", "chunks", stats.Chunks, "elapsed", stats.Elapsed)
	return stats, nil
}
