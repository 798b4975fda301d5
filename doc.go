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

// Package cyclonekb is a small document knowledge base for cyclone
// operations manuals.
//
// A KnowledgeBase splits documents into paragraphs, embeds them with a
// local or remote embedding model and answers questions by quoting the
// closest paragraphs:
//
//	kb, err := cyclonekb.Open(cyclonekb.WithPath("kb"))
//	if err != nil {
//	    return err
//	}
//	defer kb.Close()
//
//	_, err = kb.AddDocument(ctx, "Cyclone Operations Manual", text)
//	answer, err := kb.Answer(ctx, "What temperature is normal?")
//
// Chunks are stored in badger and are write-once. The vector index lives in
// memory and is rebuilt from the stored vectors on open. A store remembers
// the embedding model it was built with and refuses to open with another;
// use the reembed package to migrate it.
package cyclonekb
