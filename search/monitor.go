package search

import (
	"log/slog"

	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterIndexSearch(hits []storage.Hit)
	AfterChunkRetrieval(chunks []*core.Chunk)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) AfterEmbedding(_ []float32)          {}
func (n *noopMonitor) AfterIndexSearch(_ []storage.Hit)    {}
func (n *noopMonitor) AfterChunkRetrieval(_ []*core.Chunk) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)       {}

// LogMonitor writes each search stage to a logger at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) Start(query string) {
	m.Logger.Debug("search started", "query", query)
}

func (m *LogMonitor) AfterEmbedding(vector []float32) {
	m.Logger.Debug("query embedded", "dimension", len(vector))
}

func (m *LogMonitor) AfterIndexSearch(hits []storage.Hit) {
	for _, h := range hits {
		m.Logger.Debug("index hit", "chunk", h.ID, "score", h.Score)
	}
}

func (m *LogMonitor) AfterChunkRetrieval(chunks []*core.Chunk) {
	m.Logger.Debug("chunks retrieved", "count", len(chunks))
}

func (m *LogMonitor) Finish(results []*core.SearchResult) {
	m.Logger.Debug("search finished", "results", len(results))
}
