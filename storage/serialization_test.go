package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian/quaero/core"
)

func TestChunkRecordSerialization(t *testing.T) {
	record := &core.ChunkRecord{
		Id:         core.ChunkID("docs/report.pdf", 3, "chunk text with unicode: héllo"),
		Source:     "docs/report.pdf",
		Page:       2,
		Seq:        3,
		Contents:   "chunk text with unicode: héllo",
		Vector:     []float32{0.25, -0.5, 0.125, 1.0},
		InsertedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		Metadata:   map[string]string{"model": "nomic-embed-text"},
	}

	data := MarshalChunkRecord(record)
	got, err := UnmarshalChunkRecord(data)
	require.NoError(t, err)

	assert.Equal(t, record.Id, got.Id)
	assert.Equal(t, record.Source, got.Source)
	assert.Equal(t, record.Page, got.Page)
	assert.Equal(t, record.Seq, got.Seq)
	assert.Equal(t, record.Contents, got.Contents)
	assert.Equal(t, record.Vector, got.Vector)
	assert.True(t, record.InsertedAt.Equal(got.InsertedAt))
	assert.Equal(t, record.Metadata, got.Metadata)
}

func TestLedgerEntrySerialization(t *testing.T) {
	entry := &core.LedgerEntry{
		Source:      "docs/report.pdf",
		Fingerprint: core.Fingerprint([]byte("document bytes")),
		Chunks:      17,
		IngestedAt:  time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
	}

	data := MarshalLedgerEntry(entry)
	got, err := UnmarshalLedgerEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry.Source, got.Source)
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.Equal(t, entry.Chunks, got.Chunks)
	assert.True(t, entry.IngestedAt.Equal(got.IngestedAt))
}

func TestUnmarshalChunkRecord_Truncated(t *testing.T) {
	record := &core.ChunkRecord{
		Id:       1,
		Source:   "docs/report.pdf",
		Contents: "some chunk text",
		Vector:   []float32{1, 2, 3},
	}
	data := MarshalChunkRecord(record)

	_, err := UnmarshalChunkRecord(data[:len(data)/2])
	assert.Error(t, err)
}
