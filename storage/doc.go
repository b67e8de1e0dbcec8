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


// Package storage provides the storage abstraction layer for quaero.
//
// Two repositories share one persistent backend: the chunk repository holds
// chunk records with their embedding vectors and answers similarity queries,
// and the ledger repository records which exact document contents have
// completed ingestion. Keeping both in a single on-disk location means a
// rebuild always clears them together; neither can go stale alone.
package storage
