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


package core

import (
	"fmt"
	"math"
)

// normTolerance is how far a squared magnitude may drift from 1.0 and
// still count as unit length.
const normTolerance = 1e-3

// ValidateChunk validates a Chunk before it is stored.
//
// Validation rules:
//   - Contents must not be empty
//   - DocName must not be empty
//   - Ordinal must not be negative
//   - Vector must be present and unit-normalized
//
// NOT validated (assigned by storage):
//   - ID
//   - InsertedAt
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.DocName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocName)
	}

	if chunk.Ordinal < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeOrdinal)
	}

	if len(chunk.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingVector)
	}

	if !IsUnitVector(chunk.Vector) {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNotNormalized)
	}

	return nil
}

// IsUnitVector reports whether v has a magnitude of 1 within tolerance.
func IsUnitVector(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Abs(sum-1.0) <= normTolerance
}
