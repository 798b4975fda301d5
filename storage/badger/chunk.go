package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
// IDs are assigned under a mutex from the last stored key, so they stay
// contiguous across restarts.
type ChunkRepository struct {
	backend *Backend
	logger  *slog.Logger

	mu     sync.Mutex
	lastID core.ID
	count  int
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)
var _ storage.ManifestRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository and loads the current
// chunk count and last ID from the backend.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	r := &ChunkRepository{
		backend: backend,
		logger:  slog.Default().With("component", "chunk-repository"),
	}

	err := backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id, ok := chunkIDFromKey(iter.Item().Key())
			if !ok {
				continue
			}
			r.count++
			if id > r.lastID {
				r.lastID = id
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if r.count > 0 {
		r.logger.Debug("opened chunk repository", "chunks", r.count, "last_id", r.lastID)
	}
	return r, nil
}

// Close releases repository resources. The backend is closed by its owner.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks appends chunks in order, assigning sequential IDs starting at 1.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nextID := r.lastID
	now := time.Now().UTC()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			nextID++
			chunk.Id = nextID
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}

			key := makeChunkKey(chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Remember the first chunk of each document name
			nameKey := makeDocNameKey(chunk.DocName)
			if _, err := tx.Get(nameKey); err != nil {
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
				if err := tx.Set(nameKey, storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		// Roll back the IDs handed out above.
		for _, chunk := range chunks {
			chunk.Id = 0
		}
		return nil, fmt.Errorf("add chunks: %w", err)
	}

	r.lastID = nextID
	r.count += len(chunks)
	return chunks, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunks in the order of ids, skipping missing ones.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	result := make([]*core.Chunk, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// ForEachChunk calls fn for every chunk in ascending ID order.
func (r *ChunkRepository) ForEachChunk(ctx context.Context, fn func(*core.Chunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := chunkIDFromKey(iter.Item().Key()); !ok {
				continue
			}
			chunk, err := decodeItem(iter.Item())
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// ChunksAfter returns up to limit chunks with ID greater than after.
func (r *ChunkRepository) ChunksAfter(ctx context.Context, after core.ID, limit int) ([]*core.Chunk, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeChunkKey(after + 1)); iter.Valid() && len(results) < limit; iter.Next() {
			if _, ok := chunkIDFromKey(iter.Item().Key()); !ok {
				continue
			}
			chunk, err := decodeItem(iter.Item())
			if err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	return results, err
}

// Count returns the number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, nil
}

// DocumentNames returns the distinct document names in first-insert order.
func (r *ChunkRepository) DocumentNames(ctx context.Context) ([]string, error) {
	type entry struct {
		name  string
		first core.ID
	}
	var entries []entry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docNamePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			name := string(item.Key()[len(docNamePrefix):])
			var first core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				first, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			entries = append(entries, entry{name: name, first: first})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if a.first < b.first {
			return -1
		}
		if a.first > b.first {
			return 1
		}
		return 0
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

// Helper methods

// readChunk reads a chunk from the transaction. Returns nil, nil when absent.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeItem(item)
}

func decodeItem(item *badger.Item) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
