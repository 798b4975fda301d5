// Package badger stores chunk records in BadgerDB.
//
// Keys are laid out so that a prefix scan visits chunks in ID order:
//
//	chunk:<big-endian id>   -> encoded core.Chunk, vector included
//	chunkdoc:<name>         -> ID of the first chunk of that document
//	manifest                -> encoded core.Manifest
//
// The store is append-only. There are no update or delete operations.
package badger
