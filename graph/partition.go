package graph

// Edge is one (term, doc) pair of the bipartite token graph together
// with its occurrence array: all tokens sharing the same two
// endpoints collapse to one Edge carrying a slice of per-occurrence
// topic assignments. Vertex ids are plain int32 indices into the term
// and doc spaces; the lda package owns the richer TermId/DocId tagging
// and converts at the boundary, keeping this package free of a
// dependency on the sampling core it serves.
type Edge struct {
	Term   int32
	Doc    int32
	Topics []int32
}

// EdgePartition is a shard of the token graph: an externally provided
// slice of edges (e.g. loaded from one corpus shard), iterable
// grouped by source vertex so a word-by-word kernel can walk all
// occurrences of one term together, or a doc-by-doc kernel can walk
// all occurrences of one document together.
type EdgePartition struct {
	Edges []Edge

	byTerm map[int32][]int // term -> indices into Edges
	byDoc  map[int32][]int
}

func NewEdgePartition(edges []Edge) *EdgePartition {
	p := &EdgePartition{Edges: edges}
	p.buildIndex()
	return p
}

func (p *EdgePartition) buildIndex() {
	p.byTerm = make(map[int32][]int)
	p.byDoc = make(map[int32][]int)
	for i, e := range p.Edges {
		p.byTerm[e.Term] = append(p.byTerm[e.Term], i)
		p.byDoc[e.Doc] = append(p.byDoc[e.Doc], i)
	}
}

// NumTokens returns the total occurrence count across every edge of
// the partition.
func (p *EdgePartition) NumTokens() int {
	var n int
	for i := range p.Edges {
		n += len(p.Edges[i].Topics)
	}
	return n
}

// ForEachTermGroup visits every distinct term in the partition along
// with the indices of its edges, for a word-by-word kernel pass.
func (p *EdgePartition) ForEachTermGroup(f func(term int32, edgeIdx []int)) {
	for t, idx := range p.byTerm {
		f(t, idx)
	}
}

// ForEachDocGroup visits every distinct document in the partition
// along with the indices of its edges, for a doc-by-doc kernel pass.
func (p *EdgePartition) ForEachDocGroup(f func(doc int32, edgeIdx []int)) {
	for d, idx := range p.byDoc {
		f(d, idx)
	}
}

// InvalidateVertexCache rebuilds the term/doc group indices from
// Edges right away. UpdateCounters calls this on every partition
// after its counter-update commit, not mid-iteration: vertex
// attributes (term/doc group membership) are trusted within one
// iteration's sampling pass and are refreshed only at iteration
// boundaries.
func (p *EdgePartition) InvalidateVertexCache() {
	p.buildIndex()
}
