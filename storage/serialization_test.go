package storage

import (
	"testing"
	"time"

	"github.com/poiesic/cyclonekb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("Cyclone Maintenance Manual")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "chunk with vector",
			chunk: &core.Chunk{
				Id:         core.ID(1),
				DocId:      core.IDFromContent("Troubleshooting Guide"),
				DocName:    "Troubleshooting Guide",
				Ordinal:    3,
				Contents:   "High pressure drop usually indicates partial blockage or excessive gas flow.",
				Vector:     []float32{0.1, -0.2, 0.3, 0.4, -0.5},
				InsertedAt: now,
			},
		},
		{
			name: "chunk without vector",
			chunk: &core.Chunk{
				Id:         core.ID(2),
				DocName:    "Safety Procedures",
				Contents:   "Always follow lockout/tagout procedures before entering the cyclone.",
				InsertedAt: now,
			},
		},
		{
			name: "unicode contents",
			chunk: &core.Chunk{
				Id:         core.ID(900),
				DocName:    "Fiche technique",
				Contents:   "Température d'entrée: 850°C ± 20°C",
				Vector:     []float32{1},
				InsertedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)

			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.DocId, decoded.DocId)
			assert.Equal(t, tt.chunk.DocName, decoded.DocName)
			assert.Equal(t, tt.chunk.Ordinal, decoded.Ordinal)
			assert.Equal(t, tt.chunk.Contents, decoded.Contents)
			assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			assert.True(t, tt.chunk.InsertedAt.Equal(decoded.InsertedAt))
		})
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	full := MarshalChunk(&core.Chunk{
		Id:       core.ID(7),
		DocName:  "doc",
		Contents: "contents",
		Vector:   []float32{0.6, 0.8},
	})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated header", full[:2]},
		{"truncated timestamp", full[:len(full)-6]},
		{"truncated vector", full[:len(full)-12]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	m := &core.Manifest{
		Model:     "sentence-transformers/all-MiniLM-L6-v2",
		Dimension: 384,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalManifest(MarshalManifest(m))
	require.NoError(t, err)
	assert.Equal(t, m.Model, decoded.Model)
	assert.Equal(t, m.Dimension, decoded.Dimension)
	assert.True(t, m.UpdatedAt.Equal(decoded.UpdatedAt))

	_, err = UnmarshalManifest(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
