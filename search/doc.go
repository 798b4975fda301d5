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

// Package search answers questions from indexed chunks.
//
// Searcher embeds the query with the same embedder and normalization used
// for documents, asks the vector index for the k nearest chunks by inner
// product and resolves them from the chunk repository. Results are ranked
// from 1 with non-increasing scores.
//
// Answerer gates on the best score and builds an extractive answer: the top
// chunks quoted verbatim after a fixed prefix, plus the names of the source
// documents. When the best score is below the threshold it returns a fixed
// not-found answer instead. There is no re-ranking and no text generation.
package search
