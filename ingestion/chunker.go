package ingestion

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinChunkLength is the length a trimmed paragraph must exceed to
// become a chunk.
const DefaultMinChunkLength = 50

// paragraphSeparator splits a document into chunks.
const paragraphSeparator = "\n\n"

// SplitChunks splits text on blank lines, trims each piece and keeps pieces
// longer than minLength characters. Pieces are returned in document order.
// There is no merging, overlap or further splitting.
func SplitChunks(text string, minLength int) []string {
	var chunks []string
	for _, piece := range strings.Split(text, paragraphSeparator) {
		piece = strings.TrimSpace(piece)
		if utf8.RuneCountInString(piece) > minLength {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}
