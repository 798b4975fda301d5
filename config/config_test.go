package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cyclonekb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.InDelta(t, 0.3, cfg.Search.MinSimilarity, 1e-6)
	assert.Equal(t, 2, cfg.Search.AnswerChunks)
	assert.Equal(t, 50, cfg.Index.MinChunkLength)
	assert.Equal(t, 12, cfg.Sensor.Window)
	assert.Equal(t, 300.0, cfg.Sensor.Threshold)
	assert.Equal(t, 2, cfg.Sensor.GapFillLimit)
	assert.Equal(t, sensor.DefaultColumns, cfg.Sensor.Columns)
	assert.Equal(t, string(ai.KindFastEmbed), cfg.Embedding.Kind)
	assert.Empty(t, cfg.DB.Path)
	assert.Equal(t, "../data.xlsx", cfg.Sensor.Data)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
db:
  path: /var/lib/cyclonekb
embedding:
  kind: openai
  host: http://localhost:11434
  model: nomic-embed-text
  dimension: 768
index:
  retry_delay: 2s
  pool_size: 4
search:
  top_k: 5
  min_similarity: 0.45
sensor:
  columns: [Cyclone_Inlet_Gas_Temp, Cyclone_Material_Temp]
  threshold: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/cyclonekb", cfg.DB.Path)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, 2*time.Second, cfg.Index.RetryDelay)
	assert.Equal(t, 4, cfg.Index.PoolSize)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.InDelta(t, 0.45, cfg.Search.MinSimilarity, 1e-9)
	assert.Equal(t, 2, cfg.Search.AnswerChunks, "unset keys keep their defaults")
	assert.Equal(t, []string{sensor.InletGasTemp, sensor.MaterialTemp}, cfg.Sensor.Columns)
	assert.Equal(t, 250.0, cfg.Sensor.Threshold)

	aiCfg := cfg.AI()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, ai.KindOpenAI, aiCfg.Kind)
	assert.Equal(t, "http://localhost:11434/v1", aiCfg.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "search:\n  top_k: 5\n")
	t.Setenv("CYCLONEKB_SEARCH_TOP_K", "7")
	t.Setenv("CYCLONEKB_SEARCH_MIN_SIMILARITY", "0.5")
	t.Setenv("CYCLONEKB_DB_PATH", "/tmp/kb")
	t.Setenv("CYCLONEKB_SENSOR_COLUMNS", "Cyclone_cone_draft, Cyclone_Inlet_Draft")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Search.TopK)
	assert.InDelta(t, 0.5, cfg.Search.MinSimilarity, 1e-9)
	assert.Equal(t, "/tmp/kb", cfg.DB.Path)
	assert.Equal(t, []string{sensor.ConeDraft, sensor.InletDraft}, cfg.Sensor.Columns)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "search: [top_k"},
		{"similarity out of range", "search:\n  min_similarity: 1.5\n"},
		{"zero window", "sensor:\n  window: 0\n"},
		{"unknown kind", "embedding:\n  kind: word2vec\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Search.TopK = 0
	cfg.Index.MaxRetries = 0
	cfg.Sensor.Columns = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.top_k")
	assert.Contains(t, err.Error(), "index.max_retries")
	assert.Contains(t, err.Error(), "sensor.columns")
}

func TestConfig_Options(t *testing.T) {
	cfg := Default()
	cfg.Sensor.Threshold = 275
	cfg.Sensor.ChartDir = "out"

	assert.Equal(t, sensor.ShutdownOptions{Column: sensor.InletGasTemp, Window: 12, Threshold: 275}, cfg.ShutdownOptions())
	assert.Equal(t, sensor.DefaultGapFillLimit, cfg.CleanOptions().GapFillLimit)
	assert.Equal(t, "out", cfg.Charts().Dir)
	assert.Len(t, cfg.IndexerOptions(), 2)
	cfg.Index.PoolSize = 2
	assert.Len(t, cfg.IndexerOptions(), 3)
	assert.Len(t, cfg.AnswerOptions(), 3)
}
