// Package reembed rebuilds a knowledge base with a different embedding model.
//
// Stored chunks are write-once, so a model change never rewrites them in
// place. Rebuilder instead reads the source repository in ID order, in
// batches, embeds each batch with the new provider (retrying with
// exponential backoff) and appends copies to an empty destination
// repository and index. Chunk IDs, ordinals and document names carry over
// unchanged.
package reembed
