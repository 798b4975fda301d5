package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/poiesic/cyclonekb/sensor"
)

const (
	// EnvPrefix starts every environment variable read by Load.
	EnvPrefix = "CYCLONEKB_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
//
// Environment variables drop the prefix and split the section from the
// field at the first underscore:
//
//	CYCLONEKB_DB_PATH               -> db.path
//	CYCLONEKB_SEARCH_MIN_SIMILARITY -> search.min_similarity
//	CYCLONEKB_SENSOR_COLUMNS=a,b    -> sensor.columns
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	// Decoding overlays slices element by element, so a shorter column
	// list would keep trailing defaults.
	cfg.Sensor.Columns = nil
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Sensor.Columns) == 0 {
		cfg.Sensor.Columns = append([]string(nil), sensor.DefaultColumns...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

// envValue maps a variable to its key and splits comma-separated lists.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if key == "sensor.columns" {
		var cols []string
		for _, c := range strings.Split(value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		return key, cols
	}
	return key, value
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s is not a regular file", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	return io.ReadAll(io.LimitReader(f, maxConfigFileSize))
}
