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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyDocName indicates the DocName field is empty.
	ErrEmptyDocName = errors.New("document name cannot be empty")

	// ErrMissingVector indicates a chunk has no embedding.
	ErrMissingVector = errors.New("chunk has no vector")

	// ErrNotNormalized indicates a vector is not unit length.
	ErrNotNormalized = errors.New("vector is not unit-normalized")

	// ErrNegativeOrdinal indicates a chunk position below zero.
	ErrNegativeOrdinal = errors.New("chunk ordinal cannot be negative")
)
