// Package lda implements the sampling core: the bipartite term/doc
// token graph's vertex and edge types, the posterior decomposition
// shared by every kernel, the four sampling kernels themselves
// (ZenLDA, ZenSemiLDA, LightLDA, SparseLDA), the concurrent
// counter-update aggregation protocol, and the perplexity evaluator.
package lda

// TermId identifies a term (word-type) vertex. Bit 30 marks a
// virtual term: a synthetic vocabulary entry injected to carry
// document-level metadata (e.g. a document's class label under
// semi-supervised input) through the same sampling machinery as
// ordinary words, without the kernels needing a second code path.
// The sign bit stays clear on every valid id, so Vocabulary's
// negative unknown-token sentinel survives Real().
type TermId int32

const virtualTermBit = TermId(1) << 30

func (t TermId) IsVirtual() bool { return t&virtualTermBit != 0 }

// Real strips the virtual-term tag, returning the index into the
// underlying vocabulary/virtual-term table. A negative id (the
// unknown-token sentinel) is returned unchanged.
func (t TermId) Real() int32 {
	if t < 0 {
		return int32(t)
	}
	return int32(t &^ virtualTermBit)
}

func NewVirtualTermId(i int32) TermId { return TermId(i) | virtualTermBit }

func NewTermId(i int32) TermId { return TermId(i) }

// DocId identifies a document vertex.
type DocId int32

// VertexId is the unified identifier used at the graph-partition
// boundary, where term vertices and doc vertices share one id space
// (an edge's two endpoints are VertexIds, and a partition must be
// able to tell which side a given endpoint falls on without a second
// lookup). The top bit tags term vs. doc, the next bit tags a virtual
// term, and the remaining low bits hold the real index.
type VertexId uint64

const (
	vertexTermBit    = VertexId(1) << 63
	vertexVirtualBit = VertexId(1) << 62
	vertexIndexMask  = vertexVirtualBit - 1
)

func (v VertexId) IsTermId() bool    { return v&vertexTermBit != 0 }
func (v VertexId) IsVirtualTermId() bool {
	return v.IsTermId() && v&vertexVirtualBit != 0
}

func (v VertexId) Index() int32 { return int32(v & vertexIndexMask) }

func TermVertexId(t TermId) VertexId {
	v := vertexTermBit | VertexId(t.Real())
	if t.IsVirtual() {
		v |= vertexVirtualBit
	}
	return v
}

func DocVertexId(d DocId) VertexId {
	return VertexId(d) &^ vertexTermBit &^ vertexVirtualBit
}

func (v VertexId) AsTermId() TermId {
	if v.IsVirtualTermId() {
		return NewVirtualTermId(v.Index())
	}
	return NewTermId(v.Index())
}

func (v VertexId) AsDocId() DocId { return DocId(v.Index()) }
