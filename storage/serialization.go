// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/cyclonekb/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// chunkSize returns the encoded length of a chunk.
func chunkSize(c *core.Chunk) int {
	size := varint.Uint64.Size(uint64(c.Id))
	size += varint.Uint64.Size(uint64(c.DocId))
	size += ord.String.Size(c.DocName)
	size += varint.Int.Size(c.Ordinal)
	size += ord.String.Size(c.Contents)
	size += varint.Int.Size(len(c.Vector))
	for _, v := range c.Vector {
		size += raw.Float32.Size(v)
	}
	size += varint.Int64.Size(c.InsertedAt.UnixMicro())
	return size
}

// MarshalChunk serializes a Chunk to bytes.
// Timestamps are stored as Unix microseconds in UTC.
func MarshalChunk(c *core.Chunk) []byte {
	buf := make([]byte, chunkSize(c))
	n := varint.Uint64.Marshal(uint64(c.Id), buf)
	n += varint.Uint64.Marshal(uint64(c.DocId), buf[n:])
	n += ord.String.Marshal(c.DocName, buf[n:])
	n += varint.Int.Marshal(c.Ordinal, buf[n:])
	n += ord.String.Marshal(c.Contents, buf[n:])
	n += varint.Int.Marshal(len(c.Vector), buf[n:])
	for _, v := range c.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	varint.Int64.Marshal(c.InsertedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var (
		c   core.Chunk
		n   int
		m   int
		err error
	)
	wrap := func(err error) error {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	var id, docID uint64
	if id, m, err = varint.Uint64.Unmarshal(data); err != nil {
		return nil, wrap(err)
	}
	n += m
	if docID, m, err = varint.Uint64.Unmarshal(data[n:]); err != nil {
		return nil, wrap(err)
	}
	n += m
	c.Id, c.DocId = core.ID(id), core.ID(docID)

	if c.DocName, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, wrap(err)
	}
	n += m
	if c.Ordinal, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, wrap(err)
	}
	n += m
	if c.Contents, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, wrap(err)
	}
	n += m

	var length int
	if length, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, wrap(err)
	}
	n += m
	if length < 0 || length*4 > len(data)-n {
		return nil, wrap(ErrTruncatedData)
	}
	if length > 0 {
		c.Vector = make([]float32, length)
		for i := range c.Vector {
			if c.Vector[i], m, err = raw.Float32.Unmarshal(data[n:]); err != nil {
				return nil, wrap(err)
			}
			n += m
		}
	}

	var micros int64
	if micros, _, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, wrap(err)
	}
	c.InsertedAt = time.UnixMicro(micros).UTC()
	return &c, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(m *core.Manifest) []byte {
	micros := m.UpdatedAt.UnixMicro()
	buf := make([]byte, ord.String.Size(m.Model)+varint.Int.Size(m.Dimension)+varint.Int64.Size(micros))
	n := ord.String.Marshal(m.Model, buf)
	n += varint.Int.Marshal(m.Dimension, buf[n:])
	varint.Int64.Marshal(micros, buf[n:])
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	var m core.Manifest
	model, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	dim, k, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += k
	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	m.Model = model
	m.Dimension = dim
	m.UpdatedAt = time.UnixMicro(micros).UTC()
	return &m, nil
}
