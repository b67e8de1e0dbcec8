package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
)

func TestLedger_RecordAndIsIngested(t *testing.T) {
	_, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer ledgerRepo.Close()

	ctx := context.Background()

	ingested, err := ledgerRepo.IsIngested(ctx, "docs/a.pdf", "fp-one")
	require.NoError(t, err)
	assert.False(t, ingested)

	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source:      "docs/a.pdf",
		Fingerprint: "fp-one",
		Chunks:      4,
	}))

	ingested, err = ledgerRepo.IsIngested(ctx, "docs/a.pdf", "fp-one")
	require.NoError(t, err)
	assert.True(t, ingested)

	// A changed fingerprint reads as not ingested: the document content
	// changed and must be re-ingested.
	ingested, err = ledgerRepo.IsIngested(ctx, "docs/a.pdf", "fp-two")
	require.NoError(t, err)
	assert.False(t, ingested)
}

func TestLedger_RecordUpserts(t *testing.T) {
	_, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer ledgerRepo.Close()

	ctx := context.Background()
	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source: "docs/a.pdf", Fingerprint: "fp-one", Chunks: 4,
	}))
	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source: "docs/a.pdf", Fingerprint: "fp-two", Chunks: 6,
	}))

	entries, err := ledgerRepo.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fp-two", entries[0].Fingerprint)
	assert.Equal(t, 6, entries[0].Chunks)
	assert.False(t, entries[0].IngestedAt.IsZero())
}

func TestLedger_RecordValidates(t *testing.T) {
	_, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer ledgerRepo.Close()

	err = ledgerRepo.Record(context.Background(), &core.LedgerEntry{Source: "docs/a.pdf"})
	assert.ErrorIs(t, err, core.ErrEmptyFingerprint)
}

func TestLedger_Entry(t *testing.T) {
	_, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer ledgerRepo.Close()

	ctx := context.Background()

	_, err = ledgerRepo.Entry(ctx, "docs/missing.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source: "docs/a.pdf", Fingerprint: "fp-one", Chunks: 2,
	}))

	entry, err := ledgerRepo.Entry(ctx, "docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "fp-one", entry.Fingerprint)
	assert.Equal(t, 2, entry.Chunks)
}

func TestLedger_Forget(t *testing.T) {
	_, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer ledgerRepo.Close()

	ctx := context.Background()

	assert.ErrorIs(t, ledgerRepo.Forget(ctx, "docs/a.pdf"), storage.ErrNotFound)

	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source: "docs/a.pdf", Fingerprint: "fp-one",
	}))
	require.NoError(t, ledgerRepo.Forget(ctx, "docs/a.pdf"))

	ingested, err := ledgerRepo.IsIngested(ctx, "docs/a.pdf", "fp-one")
	require.NoError(t, err)
	assert.False(t, ingested)
}

func TestLedger_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	ledgerRepo := NewLedgerRepository(backend)

	ctx := context.Background()
	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source: "docs/a.pdf", Fingerprint: "fp-one", Chunks: 3,
	}))
	require.NoError(t, ledgerRepo.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	ledgerRepo = NewLedgerRepository(backend)
	defer ledgerRepo.Close()

	ingested, err := ledgerRepo.IsIngested(ctx, "docs/a.pdf", "fp-one")
	require.NoError(t, err)
	assert.True(t, ingested)
}
