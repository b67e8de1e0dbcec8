package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian/quaero/ai/mock"
	"github.com/veridian/quaero/core"
)

func TestReembedder_RewritesAllVectors(t *testing.T) {
	repo, cleanup := seedStore(t, 5)
	defer cleanup()

	ctx := context.Background()

	dim, err := repo.Dimension(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, dim)

	// The replacement model produces 4-dimensional vectors.
	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 2, 3, 4}
		}
		return vectors, nil
	}

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     1,
		RetryDelay:     0,
	}, &progress)

	require.NoError(t, reembedder.Run(ctx))

	dim, err = repo.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, dim)

	seen := 0
	err = repo.IterateChunks(ctx, func(record *core.ChunkRecord) error {
		seen++
		assert.Len(t, record.Vector, 4)
		assert.NotEmpty(t, record.Contents)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)

	assert.Contains(t, progress.String(), "Reembedding complete")
}

func TestReembedder_EmptyStore(t *testing.T) {
	repo, cleanup := seedStore(t, 0)
	defer cleanup()

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewEmbedder(), nil, &progress)

	require.NoError(t, reembedder.Run(context.Background()))
	assert.Contains(t, progress.String(), "No chunks found")
}

func TestReembedder_EmbeddingFailurePropagates(t *testing.T) {
	repo, cleanup := seedStore(t, 3)
	defer cleanup()

	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     0,
	}, &progress)

	err := reembedder.Run(context.Background())
	assert.ErrorContains(t, err, "failed to process batch")
}
