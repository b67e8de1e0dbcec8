// Copyright 2026 Veridian Systems
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


// Package search answers questions over the ingested document collection.
//
// The Searcher type implements a two-phase retrieval:
//   - Candidate selection: the question is embedded and the vector store
//     returns the top-k nearest chunks by cosine similarity
//   - Rerank: candidates are re-scored with an exact cosine pass and the
//     top-n survivors feed the answer prompt
//
// Results below the confidence threshold are kept but flagged, so callers
// can warn the user instead of silently answering from weak context.
package search
