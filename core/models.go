package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs come from a database sequence; document IDs are content hashes.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a named body of text submitted for indexing.
type Document struct {
	Name string
	Text string
}

// Chunk is a paragraph of a document that was embedded and indexed on its own.
type Chunk struct {
	Id         ID        // Sequential position in the knowledge base, starting at 1
	DocId      ID        // IDFromContent(DocName)
	DocName    string    // Name of the source document
	Ordinal    int       // Position of the chunk within its document, starting at 0
	Contents   string    // Trimmed paragraph text
	Vector     []float32 // Unit-normalized embedding
	InsertedAt time.Time // When the chunk was stored
}

// SearchResult is one ranked hit from a nearest-neighbor query.
type SearchResult struct {
	Rank  int // 1-based
	Score float32
	Chunk *Chunk
}

// Answer is the response assembled for a question from retrieved chunks.
type Answer struct {
	Text       string
	Confidence float32 // Similarity of the best-ranked chunk
	Sources    []string
	Results    []*SearchResult
}

// Manifest records how the vectors of a knowledge base were produced.
// A store is only searchable with an embedder of the same model.
type Manifest struct {
	Model     string
	Dimension int
	UpdatedAt time.Time
}
