package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	unit := []float32{0.6, 0.8, 0}

	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				DocName:  "Maintenance Guide",
				Contents: "Calibrate temperature instruments weekly.",
				Vector:   unit,
			},
			wantErr: nil,
		},
		{
			name: "valid chunk with ID 0",
			chunk: &Chunk{
				Id:       0,
				DocName:  "Maintenance Guide",
				Contents: "Record temperature readings from all sensors.",
				Ordinal:  3,
				Vector:   unit,
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty contents",
			chunk: &Chunk{
				DocName: "Maintenance Guide",
				Vector:  unit,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "empty document name",
			chunk: &Chunk{
				Contents: "Inspect refractory lining condition.",
				Vector:   unit,
			},
			wantErr: ErrEmptyDocName,
		},
		{
			name: "negative ordinal",
			chunk: &Chunk{
				DocName:  "Maintenance Guide",
				Contents: "Inspect refractory lining condition.",
				Ordinal:  -1,
				Vector:   unit,
			},
			wantErr: ErrNegativeOrdinal,
		},
		{
			name: "missing vector",
			chunk: &Chunk{
				DocName:  "Maintenance Guide",
				Contents: "Inspect refractory lining condition.",
			},
			wantErr: ErrMissingVector,
		},
		{
			name: "vector not normalized",
			chunk: &Chunk{
				DocName:  "Maintenance Guide",
				Contents: "Inspect refractory lining condition.",
				Vector:   []float32{1, 2, 2},
			},
			wantErr: ErrNotNormalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidChunk) {
				t.Errorf("ValidateChunk() error = %v, should wrap ErrInvalidChunk", err)
			}
		})
	}
}
