// Package ingestion turns documents into indexed chunks.
//
// A document is split on blank lines, each trimmed paragraph longer than
// the minimum length becomes a chunk, all chunks of the document are
// embedded in one batch and normalized, and the chunks are appended to the
// chunk repository and then to the vector index.
//
//	ix, err := ingestion.NewIndexer(repo, index, provider)
//	if err != nil {
//	    return err
//	}
//	defer ix.Release()
//	chunks, err := ix.AddDocument(ctx, "Troubleshooting Guide", text)
//
// AddDocuments embeds several documents in parallel on an ants pool. Commits
// stay in input order under a single lock, so chunk IDs and index positions
// advance together. After every commit the index and the repository hold the
// same number of entries; a mismatch is reported as ErrIndexOutOfSync.
package ingestion
