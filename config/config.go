// Package config loads application settings for the cyclonekb command.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/ingestion"
	"github.com/poiesic/cyclonekb/search"
	"github.com/poiesic/cyclonekb/sensor"
)

// Config is the complete application configuration.
type Config struct {
	DB        DBConfig        `koanf:"db"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	Search    SearchConfig    `koanf:"search"`
	Sensor    SensorConfig    `koanf:"sensor"`
}

// DBConfig locates the chunk store. An empty path keeps the store in memory.
type DBConfig struct {
	Path string `koanf:"path"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	Kind      string `koanf:"kind"`
	Model     string `koanf:"model"`
	Host      string `koanf:"host"`
	CacheDir  string `koanf:"cache_dir"`
	MaxLength int    `koanf:"max_length"`
	Dimension int    `koanf:"dimension"`
	BatchSize int    `koanf:"batch_size"`
}

// IndexConfig tunes document ingestion.
type IndexConfig struct {
	MinChunkLength int           `koanf:"min_chunk_length"`
	PoolSize       int           `koanf:"pool_size"` // 0 picks a size from the CPU count
	MaxRetries     int           `koanf:"max_retries"`
	RetryDelay     time.Duration `koanf:"retry_delay"`
}

// SearchConfig tunes retrieval and answer assembly.
type SearchConfig struct {
	TopK          int     `koanf:"top_k"`
	MinSimilarity float64 `koanf:"min_similarity"`
	AnswerChunks  int     `koanf:"answer_chunks"`
}

// SensorConfig tunes the sensor analysis pipeline.
type SensorConfig struct {
	Data            string   `koanf:"data"`
	Sheet           string   `koanf:"sheet"`
	Columns         []string `koanf:"columns"`
	GapFillLimit    int      `koanf:"gap_fill_limit"`
	Column          string   `koanf:"column"`
	Window          int      `koanf:"window"`
	Threshold       float64  `koanf:"threshold"`
	ChartDir        string   `koanf:"chart_dir"`
	OverviewSamples int      `koanf:"overview_samples"`
	ShutdownSamples int      `koanf:"shutdown_samples"`
}

// Default returns the built-in configuration.
func Default() *Config {
	emb := ai.DefaultConfig()
	return &Config{
		Embedding: EmbeddingConfig{
			Kind:      string(emb.Kind),
			Model:     emb.Model,
			Host:      emb.Host,
			CacheDir:  emb.CacheDir,
			MaxLength: emb.MaxLength,
			Dimension: emb.Dimension,
			BatchSize: emb.BatchSize,
		},
		Index: IndexConfig{
			MinChunkLength: ingestion.DefaultMinChunkLength,
			MaxRetries:     ingestion.DefaultMaxRetries,
			RetryDelay:     ingestion.DefaultRetryDelay,
		},
		Search: SearchConfig{
			TopK:          search.DefaultTopK,
			MinSimilarity: float64(search.DefaultMinSimilarity),
			AnswerChunks:  search.DefaultAnswerChunks,
		},
		Sensor: SensorConfig{
			Data:            "../data.xlsx",
			Columns:         append([]string(nil), sensor.DefaultColumns...),
			GapFillLimit:    sensor.DefaultGapFillLimit,
			Column:          sensor.InletGasTemp,
			Window:          sensor.DefaultWindow,
			Threshold:       sensor.DefaultThreshold,
			ChartDir:        ".",
			OverviewSamples: sensor.DefaultOverviewSamples,
			ShutdownSamples: sensor.DefaultShutdownSamples,
		},
	}
}

// Validate checks every section and returns all problems found.
func (c *Config) Validate() error {
	var errs []error

	if err := c.AI().Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Index.MinChunkLength < 0 {
		errs = append(errs, errors.New("index.min_chunk_length must not be negative"))
	}
	if c.Index.PoolSize < 0 {
		errs = append(errs, errors.New("index.pool_size must not be negative"))
	}
	if c.Index.MaxRetries <= 0 {
		errs = append(errs, errors.New("index.max_retries must be positive"))
	}
	if c.Index.RetryDelay < 0 {
		errs = append(errs, errors.New("index.retry_delay must not be negative"))
	}

	if c.Search.TopK <= 0 {
		errs = append(errs, errors.New("search.top_k must be positive"))
	}
	if c.Search.MinSimilarity < -1 || c.Search.MinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("search.min_similarity must be within [-1, 1], got %g", c.Search.MinSimilarity))
	}
	if c.Search.AnswerChunks <= 0 {
		errs = append(errs, errors.New("search.answer_chunks must be positive"))
	}

	if len(c.Sensor.Columns) == 0 {
		errs = append(errs, errors.New("sensor.columns must not be empty"))
	}
	if c.Sensor.GapFillLimit < 0 {
		errs = append(errs, errors.New("sensor.gap_fill_limit must not be negative"))
	}
	if c.Sensor.Column == "" {
		errs = append(errs, errors.New("sensor.column is required"))
	}
	if c.Sensor.Window < 1 {
		errs = append(errs, errors.New("sensor.window must be at least 1"))
	}
	if c.Sensor.OverviewSamples <= 0 || c.Sensor.ShutdownSamples <= 0 {
		errs = append(errs, errors.New("sensor chart sample counts must be positive"))
	}

	return errors.Join(errs...)
}

// AI returns the embedding section as an ai.Config.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithKind(ai.Kind(c.Embedding.Kind)),
		ai.WithModel(c.Embedding.Model),
		ai.WithHost(c.Embedding.Host),
		ai.WithCacheDir(c.Embedding.CacheDir),
		ai.WithMaxLength(c.Embedding.MaxLength),
		ai.WithDimension(c.Embedding.Dimension),
		ai.WithBatchSize(c.Embedding.BatchSize),
	)
}

// IndexerOptions returns the ingestion options for the index section.
func (c *Config) IndexerOptions() []ingestion.Option {
	opts := []ingestion.Option{
		ingestion.WithMinChunkLength(c.Index.MinChunkLength),
		ingestion.WithRetry(c.Index.MaxRetries, c.Index.RetryDelay),
	}
	if c.Index.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Index.PoolSize))
	}
	return opts
}

// AnswerOptions returns the answerer options for the search section.
func (c *Config) AnswerOptions() []search.AnswerOption {
	return []search.AnswerOption{
		search.WithTopK(c.Search.TopK),
		search.WithMinSimilarity(float32(c.Search.MinSimilarity)),
		search.WithAnswerChunks(c.Search.AnswerChunks),
	}
}

// CleanOptions returns the sensor cleaning options.
func (c *Config) CleanOptions() sensor.CleanOptions {
	return sensor.CleanOptions{
		Columns:      c.Sensor.Columns,
		GapFillLimit: c.Sensor.GapFillLimit,
	}
}

// ShutdownOptions returns the shutdown detection options.
func (c *Config) ShutdownOptions() sensor.ShutdownOptions {
	return sensor.ShutdownOptions{
		Column:    c.Sensor.Column,
		Window:    c.Sensor.Window,
		Threshold: c.Sensor.Threshold,
	}
}

// Charts returns the chart renderer for the sensor section.
func (c *Config) Charts() sensor.Charts {
	return sensor.Charts{
		Dir:             c.Sensor.ChartDir,
		OverviewSamples: c.Sensor.OverviewSamples,
		ShutdownSamples: c.Sensor.ShutdownSamples,
	}
}
