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


package core

import "fmt"

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Source must not be empty
//   - Page and Seq must not be negative
//
// NOT validated here:
//   - Vector length (uniform dimensionality is a store-level property)
//   - ID (derived from content at insertion time)
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if record.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyContents)
	}

	if record.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptySource)
	}

	if record.Page < 0 || record.Seq < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrNegativePosition)
	}

	return nil
}

// ValidateLedgerEntry validates a LedgerEntry according to domain rules.
//
// Validation rules:
//   - Source must not be empty
//   - Fingerprint must not be empty
func ValidateLedgerEntry(entry *LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidLedgerEntry)
	}

	if entry.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLedgerEntry, ErrEmptySource)
	}

	if entry.Fingerprint == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLedgerEntry, ErrEmptyFingerprint)
	}

	return nil
}
