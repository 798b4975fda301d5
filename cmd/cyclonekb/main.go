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

package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/cyclonekb"
	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/ai/fastembed"
	"github.com/poiesic/cyclonekb/config"
	"github.com/urfave/cli/v2"
)

// newProvider opens the embedding provider for commands that need one.
var newProvider = cyclonekb.NewProvider

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			fmt.Fprintln(os.Stderr, "Missing embedding backend:", err)
			fmt.Fprintln(os.Stderr, fastembed.InstallHint)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory (overrides db.path)",
	}

	return &cli.App{
		Name:  "cyclonekb",
		Usage: "Cyclone sensor analysis and document question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Explore and clean sensor data, render charts and flag shutdowns",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data",
						Usage: "Workbook or CSV with a time column (overrides sensor.data)",
					},
					&cli.StringFlag{
						Name:  "sheet",
						Usage: "Workbook sheet to read (default: first sheet)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Directory for chart images (overrides sensor.chart_dir)",
					},
					&cli.BoolFlag{
						Name:  "no-charts",
						Usage: "Skip chart rendering",
					},
				},
			},
			{
				Name:      "index",
				Usage:     "Add text documents to the knowledge base",
				ArgsUsage: "FILE...",
				Action:    indexCommand,
				Flags:     []cli.Flag{dbFlag},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the knowledge base",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of chunks to retrieve (overrides search.top_k)",
					},
				},
			},
			{
				Name:   "demo",
				Usage:  "Answer sample questions over the built-in sample documents",
				Action: demoCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild a knowledge base with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "src",
						Usage:    "Source BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dst",
						Usage:    "Destination directory, created empty",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for each embedding call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// loadConfig reads the file named by --config, if any, with env overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DB.Path = c.String("db")
	}
	return cfg, nil
}

// openKnowledgeBase opens the store described by cfg with a fresh provider.
func openKnowledgeBase(cfg *config.Config, opts ...cyclonekb.Option) (*cyclonekb.KnowledgeBase, error) {
	provider, err := newProvider(cfg.AI())
	if err != nil {
		return nil, err
	}
	opts = append([]cyclonekb.Option{cyclonekb.WithConfig(cfg), cyclonekb.WithProvider(provider)}, opts...)
	return cyclonekb.Open(opts...)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
