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

package cyclonekb

import "errors"

var (
	// ErrModelMismatch is returned when a store was built with a different
	// embedding model than the one it is opened with.
	ErrModelMismatch = errors.New("embedding model does not match store")

	// ErrUnknownKind is returned for an embedding backend that is not built in.
	ErrUnknownKind = errors.New("unknown embedding kind")
)
