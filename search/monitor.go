package search

import "github.com/veridian/quaero/core"

// QueryMonitor provides hooks to observe the query process.
// Implement this interface to track intermediate steps during retrieval and
// answer generation, for diagnostics or verbose CLI output.
type QueryMonitor interface {
	Start(question string)
	AfterEmbedding(vector []float32)
	AfterVectorSearch(candidates []*core.ScoredChunk)
	AfterRerank(results []*core.RankedChunk)
	Finish(answer string)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterEmbedding(_ []float32)              {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ScoredChunk) {}
func (n *noopMonitor) AfterRerank(_ []*core.RankedChunk)       {}
func (n *noopMonitor) Finish(_ string)                         {}
