package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/cyclonekb/core"
	"github.com/urfave/cli/v2"
)

// answerPreview is how much of an answer is printed before truncation.
const answerPreview = 200

func indexCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one document file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	docs := make([]core.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		docs = append(docs, core.Document{Name: documentName(path), Text: string(text)})
	}

	kb, err := openKnowledgeBase(cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	ctx := context.Background()
	chunks, err := kb.AddDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing stopped after %d chunks: %w", len(chunks), err)
	}

	total, err := kb.ChunkCount(ctx)
	if err != nil {
		return err
	}
	names, err := kb.DocumentNames(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Added %d chunks from %d documents\n", len(chunks), len(docs))
	fmt.Fprintf(c.App.Writer, "Knowledge base now contains %d chunks from %d documents\n", total, len(names))
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("top-k") {
		cfg.Search.TopK = c.Int("top-k")
	}

	kb, err := openKnowledgeBase(cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	answer, err := kb.Answer(context.Background(), question)
	if err != nil {
		return err
	}
	printAnswer(c.App.Writer, question, answer)
	return nil
}

func demoCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.DB.Path = ""

	kb, err := openKnowledgeBase(cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	w := c.App.Writer
	ctx := context.Background()
	fmt.Fprintln(w, "Adding sample documents...")
	if _, err := kb.AddDocuments(ctx, sampleDocuments); err != nil {
		return err
	}
	count, err := kb.ChunkCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Knowledge base now contains %d chunks from %d documents\n\n", count, len(sampleDocuments))

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "%s\nTESTING QUESTIONS\n%s\n", rule, rule)
	for _, q := range sampleQuestions {
		answer, err := kb.Answer(ctx, q)
		if err != nil {
			return err
		}
		printAnswer(w, q, answer)
	}
	return nil
}

func printAnswer(w io.Writer, question string, answer *core.Answer) {
	text := answer.Text
	if runes := []rune(text); len(runes) > answerPreview {
		text = string(runes[:answerPreview]) + "..."
	}
	fmt.Fprintf(w, "\nQ: %s\n", question)
	fmt.Fprintf(w, "A: %s\n", text)
	fmt.Fprintf(w, "Confidence: %.3f\n", answer.Confidence)
	fmt.Fprintf(w, "Sources: %s\n", strings.Join(answer.Sources, ", "))
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

// documentName names a document after its file, without the extension.
func documentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
