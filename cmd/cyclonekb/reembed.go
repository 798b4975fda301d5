package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/cyclonekb/reembed"
	"github.com/poiesic/cyclonekb/storage/badger"
	"github.com/urfave/cli/v2"
)

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	srcPath, dstPath := c.String("src"), c.String("dst")
	if same, err := samePath(srcPath, dstPath); err != nil {
		return err
	} else if same {
		return reembed.ErrSameRepository
	}

	rebuildConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if rebuildConfig.BatchSize <= 0 {
		return errors.New("batch-size must be greater than 0")
	}
	if rebuildConfig.ReportInterval <= 0 {
		return errors.New("report-interval must be greater than 0")
	}
	if rebuildConfig.MaxRetries <= 0 {
		return errors.New("max-retries must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Opening a missing directory would create an empty store.
	info, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("source database: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source database %s is not a directory", srcPath)
	}

	// The source may have been built with any model, so it is opened
	// without a provider.
	backend, err := badger.OpenBackend(srcPath, false)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer backend.Close()

	src, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create source repository: %w", err)
	}
	defer src.Close()

	cfg.DB.Path = dstPath
	dst, err := openKnowledgeBase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	defer dst.Close()

	w := c.App.ErrWriter
	fmt.Fprintf(w, "Source: %s\n", srcPath)
	fmt.Fprintf(w, "Destination: %s\n", dstPath)
	fmt.Fprintf(w, "Embedding model: %s\n", dst.Provider().Model())
	fmt.Fprintln(w)

	rebuilder, err := reembed.NewRebuilder(src, dst.ChunkRepository(), dst.Index(), dst.Provider(), rebuildConfig, w)
	if err != nil {
		return err
	}
	if _, err := rebuilder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
