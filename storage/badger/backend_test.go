package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestFindSimilar_EmptyCollection(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	results, err := backend.FindSimilar(ctx, []float32{0.1, 0.2, 0.3}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_InvalidLimit(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.FindSimilar(context.Background(), []float32{0.1}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindSimilar_Ordering(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	records := []*core.ChunkRecord{
		{Source: "a.pdf", Page: 1, Seq: 0, Contents: "exact match", Vector: []float32{1, 0, 0}},
		{Source: "a.pdf", Page: 1, Seq: 1, Contents: "close match", Vector: []float32{0.9, 0.1, 0}},
		{Source: "a.pdf", Page: 2, Seq: 2, Contents: "unrelated", Vector: []float32{0, 0, 1}},
	}
	require.NoError(t, chunkRepo.AddChunks(ctx, records...))

	query := []float32{1, 0, 0}
	results, err := backend.FindSimilar(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact match", results[0].Record.Contents)
	assert.Equal(t, "close match", results[1].Record.Contents)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	// No excluded record may score above an included one.
	excluded := core.CosineSimilarity(query, records[2].Vector)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.Score, excluded)
	}
}

func TestFindSimilar_QueryDimensionMismatch(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, chunkRepo.AddChunks(ctx, &core.ChunkRecord{
		Source: "a.pdf", Page: 1, Seq: 0, Contents: "text", Vector: []float32{1, 0, 0},
	}))

	_, err = backend.FindSimilar(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestDropAll(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, chunkRepo.AddChunks(ctx, &core.ChunkRecord{
		Source: "a.pdf", Page: 1, Seq: 0, Contents: "text", Vector: []float32{1, 0},
	}))
	require.NoError(t, ledgerRepo.Record(ctx, &core.LedgerEntry{
		Source: "a.pdf", Fingerprint: "fp", Chunks: 1,
	}))

	require.NoError(t, backend.DropAll())

	// Chunks, dimensionality and ledger are all gone together.
	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	dim, err := chunkRepo.Dimension(ctx)
	require.NoError(t, err)
	assert.Zero(t, dim)

	ingested, err := ledgerRepo.IsIngested(ctx, "a.pdf", "fp")
	require.NoError(t, err)
	assert.False(t, ingested)
}
