package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/cyclonekb/core"
)

const (
	// NoDocumentsAnswer is returned when nothing has been indexed.
	NoDocumentsAnswer = "I don't have any documents to search through yet."

	// NotFoundAnswer is returned when the best match is below the similarity threshold.
	NotFoundAnswer = "I couldn't find relevant information in the available documents."

	// AnswerPrefix starts every answer assembled from retrieved chunks.
	AnswerPrefix = "Based on the available documentation:\n\n"

	// DefaultMinSimilarity is the best score a question needs to be answered.
	DefaultMinSimilarity float32 = 0.3

	// DefaultAnswerChunks is how many retrieved chunks go into an answer.
	DefaultAnswerChunks = 2

	chunkSeparator = "\n\n"
)

// Answerer builds extractive answers from retrieved chunks.
// It quotes chunks verbatim and never generates text.
type Answerer struct {
	searcher      *Searcher
	topK          int
	minSimilarity float32
	answerChunks  int
	monitor       SearchMonitor
	logger        *slog.Logger
}

// AnswerOption configures an Answerer.
type AnswerOption func(*Answerer) error

// WithTopK sets how many chunks are retrieved per question.
func WithTopK(k int) AnswerOption {
	return func(a *Answerer) error {
		if k <= 0 {
			return fmt.Errorf("%w: top-k %d", ErrInvalidLimit, k)
		}
		a.topK = k
		return nil
	}
}

// WithMinSimilarity sets the score the best match must reach.
func WithMinSimilarity(threshold float32) AnswerOption {
	return func(a *Answerer) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("similarity threshold must be within [-1, 1], got %v", threshold)
		}
		a.minSimilarity = threshold
		return nil
	}
}

// WithAnswerChunks sets how many of the retrieved chunks are quoted.
func WithAnswerChunks(n int) AnswerOption {
	return func(a *Answerer) error {
		if n <= 0 {
			return fmt.Errorf("%w: answer chunks %d", ErrInvalidLimit, n)
		}
		a.answerChunks = n
		return nil
	}
}

// WithMonitor observes the search behind every answer.
func WithMonitor(monitor SearchMonitor) AnswerOption {
	return func(a *Answerer) error {
		a.monitor = monitor
		return nil
	}
}

// WithAnswerLogger sets a custom logger.
func WithAnswerLogger(logger *slog.Logger) AnswerOption {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates an answerer on top of searcher.
func NewAnswerer(searcher *Searcher, opts ...AnswerOption) (*Answerer, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	a := &Answerer{
		searcher:      searcher,
		topK:          DefaultTopK,
		minSimilarity: DefaultMinSimilarity,
		answerChunks:  DefaultAnswerChunks,
		logger:        slog.Default().With("component", "answerer"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Answer retrieves the top chunks for question and assembles an answer.
//
//   - nothing indexed: NoDocumentsAnswer, confidence 0, no sources
//   - best score below the threshold: NotFoundAnswer, with the best score as
//     confidence and the document of every result as sources
//   - otherwise: AnswerPrefix followed by the top chunks joined by a blank
//     line, with the de-duplicated documents of all results as sources
func (a *Answerer) Answer(ctx context.Context, question string) (*core.Answer, error) {
	count, err := a.searcher.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &core.Answer{Text: NoDocumentsAnswer, Confidence: 0, Sources: []string{}}, nil
	}

	results, err := a.searcher.SearchWithMonitor(ctx, question, a.topK, a.monitor)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &core.Answer{Text: NoDocumentsAnswer, Confidence: 0, Sources: []string{}}, nil
	}

	best := results[0].Score
	if best < a.minSimilarity {
		sources := make([]string, len(results))
		for i, r := range results {
			sources[i] = r.Chunk.DocName
		}
		a.logger.Debug("best match below threshold", "question", question, "score", best, "threshold", a.minSimilarity)
		return &core.Answer{
			Text:       NotFoundAnswer,
			Confidence: best,
			Sources:    sources,
			Results:    results,
		}, nil
	}

	quoted := min(a.answerChunks, len(results))
	pieces := make([]string, quoted)
	for i := range quoted {
		pieces[i] = results[i].Chunk.Contents
	}

	return &core.Answer{
		Text:       AnswerPrefix + strings.Join(pieces, chunkSeparator),
		Confidence: best,
		Sources:    uniqueSources(results),
		Results:    results,
	}, nil
}

// uniqueSources returns the document names of results in rank order, each once.
func uniqueSources(results []*core.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.Chunk.DocName]; ok {
			continue
		}
		seen[r.Chunk.DocName] = struct{}{}
		sources = append(sources, r.Chunk.DocName)
	}
	return sources
}
