package search

import (
	"context"
	"log/slog"

	"github.com/veridian/quaero/ai"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
)

// Default retrieval parameters.
const (
	// DefaultTopK is how many candidates the vector search returns for
	// reranking.
	DefaultTopK = 20

	// DefaultTopN is how many reranked chunks feed the answer prompt.
	DefaultTopN = 4

	// DefaultThreshold is the cosine score below which a result is flagged
	// low confidence.
	DefaultThreshold = 0.2
)

// Searcher answers questions over the ingested document collection using a
// two-phase retrieval: approximate candidate selection by the store's vector
// search, then an exact cosine rerank before generation.
type Searcher struct {
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	generator ai.Generator
	topK      int
	topN      int
	threshold float32
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithTopK sets how many candidates the vector search returns.
// Default is DefaultTopK. Values below 1 are clamped to 1.
func WithTopK(topK int) Option {
	return func(s *Searcher) error {
		if topK < 1 {
			topK = 1
		}
		s.topK = topK
		return nil
	}
}

// WithTopN sets how many reranked chunks feed the answer prompt.
// Default is DefaultTopN. Values below 1 are clamped to 1.
func WithTopN(topN int) Option {
	return func(s *Searcher) error {
		if topN < 1 {
			topN = 1
		}
		s.topN = topN
		return nil
	}
}

// WithThreshold sets the low-confidence cosine score threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.threshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunks storage.ChunkRepository,
	embedder ai.Embedder,
	generator ai.Generator,
	opts ...Option,
) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	s := &Searcher{
		chunks:    chunks,
		embedder:  embedder,
		generator: generator,
		topK:      DefaultTopK,
		topN:      DefaultTopN,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	// Rerank input must never be narrower than its output.
	if s.topK < s.topN {
		s.topK = s.topN
	}

	return s, nil
}

// Retrieve returns the chunks most relevant to the question, reranked by
// exact cosine similarity, highest first. An empty store yields an empty
// slice, not an error.
func (s *Searcher) Retrieve(ctx context.Context, question string) ([]*core.RankedChunk, error) {
	return s.RetrieveWithMonitor(ctx, question, nil)
}

// RetrieveWithMonitor is Retrieve with monitoring callbacks at each stage.
func (s *Searcher) RetrieveWithMonitor(ctx context.Context, question string, monitor QueryMonitor) ([]*core.RankedChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(question)

	embedding, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		s.logger.Error("error generating embedding for question", "err", err)
		return nil, err
	}
	embedding = core.NormalizeVector(embedding)
	monitor.AfterEmbedding(embedding)

	candidates, err := s.chunks.FindSimilar(ctx, embedding, s.topK)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(candidates)

	results := Rerank(embedding, candidates, s.topN, s.threshold)
	monitor.AfterRerank(results)

	s.logger.Debug("retrieved chunks",
		"candidates", len(candidates),
		"results", len(results))

	return results, nil
}

// Answer holds a generated answer together with the chunks that grounded it.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Support lists the reranked chunks the answer was grounded in,
	// highest score first.
	Support []*core.RankedChunk

	// LowConfidence is set when even the best supporting chunk scored below
	// the confidence threshold. The answer is still produced, but callers
	// should surface the warning.
	LowConfidence bool
}

// Ask retrieves relevant chunks and generates an answer grounded in them.
// Returns ErrNoResults when nothing relevant exists in the store.
func (s *Searcher) Ask(ctx context.Context, question string) (*Answer, error) {
	return s.AskWithMonitor(ctx, question, nil)
}

// AskWithMonitor is Ask with monitoring callbacks at each stage.
func (s *Searcher) AskWithMonitor(ctx context.Context, question string, monitor QueryMonitor) (*Answer, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	support, err := s.RetrieveWithMonitor(ctx, question, monitor)
	if err != nil {
		return nil, err
	}
	if len(support) == 0 {
		return nil, ErrNoResults
	}

	passages := make([]string, len(support))
	for i, chunk := range support {
		passages[i] = chunk.Record.Contents
	}

	text, err := s.generator.Generate(ctx, question, passages)
	if err != nil {
		s.logger.Error("error generating answer", "err", err)
		return nil, err
	}
	monitor.Finish(text)

	return &Answer{
		Text:          text,
		Support:       support,
		LowConfidence: support[0].LowConfidence,
	}, nil
}
