package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian/quaero/ai/mock"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
	"github.com/veridian/quaero/storage/badger"
)

// fixedEmbedder returns the same query vector for every text, so tests can
// seed the store with hand-picked vectors.
func fixedEmbedder(vector []float32) *mock.Embedder {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func seedChunks(t *testing.T, repo storage.ChunkRepository, records ...*core.ChunkRecord) {
	t.Helper()
	require.NoError(t, repo.AddChunks(context.Background(), records...))
}

func chunk(contents string, seq int, vector []float32) *core.ChunkRecord {
	return &core.ChunkRecord{
		Source:   "manual.pdf",
		Page:     seq + 1,
		Seq:      seq,
		Contents: contents,
		Vector:   vector,
	}
}

func TestNewSearcher_Validation(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewEmbedder()
	generator := mock.NewGenerator()

	_, err = NewSearcher(nil, embedder, generator)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewSearcher(chunkRepo, nil, generator)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewSearcher(chunkRepo, embedder, nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestRetrieve_RanksBestMatchFirst(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	seedChunks(t, chunkRepo,
		chunk("the needle paragraph", 0, []float32{1, 0, 0}),
		chunk("nearby material", 1, []float32{0.8, 0.2, 0}),
		chunk("unrelated material", 2, []float32{0, 0, 1}),
	)

	searcher, err := NewSearcher(chunkRepo, fixedEmbedder([]float32{1, 0, 0}), mock.NewGenerator(),
		WithTopN(2))
	require.NoError(t, err)

	results, err := searcher.Retrieve(context.Background(), "where is the needle?")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "the needle paragraph", results[0].Record.Contents)
	assert.False(t, results[0].LowConfidence)
}

func TestRetrieve_EmptyStore(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(chunkRepo, fixedEmbedder([]float32{1, 0, 0}), mock.NewGenerator())
	require.NoError(t, err)

	results, err := searcher.Retrieve(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAsk_GroundsAnswerInTopChunks(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	seedChunks(t, chunkRepo,
		chunk("rent is 1200 euros", 0, []float32{1, 0}),
		chunk("the lease runs one year", 1, []float32{0.7, 0.3}),
		chunk("parking is not included", 2, []float32{0, 1}),
	)

	generator := mock.NewGenerator()
	searcher, err := NewSearcher(chunkRepo, fixedEmbedder([]float32{1, 0}), generator,
		WithTopN(2))
	require.NoError(t, err)

	answer, err := searcher.Ask(context.Background(), "what is the rent?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
	assert.False(t, answer.LowConfidence)
	require.Len(t, answer.Support, 2)

	// The generator must receive passages in rerank order.
	passages := generator.LastPassages()
	require.Len(t, passages, 2)
	assert.Equal(t, "rent is 1200 euros", passages[0])
	assert.Equal(t, "the lease runs one year", passages[1])
}

func TestAsk_EmptyStore(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(chunkRepo, fixedEmbedder([]float32{1, 0}), mock.NewGenerator())
	require.NoError(t, err)

	_, err = searcher.Ask(context.Background(), "anything?")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestAsk_FlagsLowConfidenceAnswer(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	// Everything in the store is orthogonal to the question.
	seedChunks(t, chunkRepo,
		chunk("completely unrelated", 0, []float32{0, 1}),
	)

	searcher, err := NewSearcher(chunkRepo, fixedEmbedder([]float32{1, 0}), mock.NewGenerator())
	require.NoError(t, err)

	answer, err := searcher.Ask(context.Background(), "what is the rent?")
	require.NoError(t, err)
	assert.True(t, answer.LowConfidence)
	assert.NotEmpty(t, answer.Text)
}

type recordingMonitor struct {
	started    bool
	embedded   bool
	candidates int
	reranked   int
	finished   bool
}

func (m *recordingMonitor) Start(string)                             { m.started = true }
func (m *recordingMonitor) AfterEmbedding([]float32)                 { m.embedded = true }
func (m *recordingMonitor) AfterVectorSearch(c []*core.ScoredChunk)  { m.candidates = len(c) }
func (m *recordingMonitor) AfterRerank(r []*core.RankedChunk)        { m.reranked = len(r) }
func (m *recordingMonitor) Finish(string)                            { m.finished = true }

func TestAskWithMonitor_ObservesEveryStage(t *testing.T) {
	chunkRepo, ledgerRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		ledgerRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	seedChunks(t, chunkRepo,
		chunk("alpha", 0, []float32{1, 0}),
		chunk("beta", 1, []float32{0, 1}),
	)

	searcher, err := NewSearcher(chunkRepo, fixedEmbedder([]float32{1, 0}), mock.NewGenerator(),
		WithTopN(1))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.AskWithMonitor(context.Background(), "alpha?", monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.True(t, monitor.embedded)
	assert.Equal(t, 2, monitor.candidates)
	assert.Equal(t, 1, monitor.reranked)
	assert.True(t, monitor.finished)
}
