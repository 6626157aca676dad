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


// Package search provides hybrid structured and semantic search over doubles.
//
// The Searcher type runs two retrieval paths concurrently and merges them:
//   - Structured search: an exact filter query against the graph store
//   - Semantic search: top-k similarity search over description embeddings
//
// Free-text input is first translated into a filter so both paths can run
// from one query. Merged results are scored by weighted combination and
// tagged with provenance, so a caller can tell an exact match from a merely
// similar one. When one path fails the other's results are still returned,
// marked partial.
package search
