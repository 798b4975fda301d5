// Package chromem is the in-memory vector index of a knowledge base, built
// on chromem-go.
//
// The index holds one vector per chunk, keyed by chunk ID, and answers exact
// nearest-neighbor queries by inner product. It never embeds text itself and
// never updates or deletes an entry. On open, the knowledge base refills it
// from the chunk repository.
package chromem
