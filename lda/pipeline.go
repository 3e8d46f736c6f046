package lda

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/wangkuiyi/parallel"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/graph"
)

// BuildGraph converts an in-memory corpus into the bipartite token
// graph the substrate serves: one edge per distinct (term, doc) pair
// carrying that pair's occurrence array, assigned to edge partitions
// by the source term's partition per router (the byTerm strategy, so
// a word-by-word pass finds every occurrence of a term in one
// partition). Documents are identified by their corpus position.
func BuildGraph(docs []*Document, router graph.Router, numPartitions int) []*graph.EdgePartition {
	type key struct {
		term int32
		doc  int32
	}
	occ := make(map[key][]int32)
	for d, doc := range docs {
		for pos, term := range doc.Terms {
			k := key{term.Real(), int32(d)}
			occ[k] = append(occ[k], doc.Topics[pos])
		}
	}

	edges := make([][]graph.Edge, numPartitions)
	for k, topics := range occ {
		p := router.TermPartition(k.term)
		edges[p] = append(edges[p], graph.Edge{Term: k.term, Doc: k.doc, Topics: topics})
	}

	parts := make([]*graph.EdgePartition, numPartitions)
	for i := range parts {
		parts[i] = graph.NewEdgePartition(edges[i])
	}
	return parts
}

// UpdateCounters runs the two-phase counter update across every edge
// partition of sub: each partition walks its edges and accumulates
// partial per-vertex topic counts (sparse by default, term partials
// promoted to dense once their active size reaches K/8), then merges
// every partial into the authoritative vertex stores under the
// per-slot atomic marks. Partitions run concurrently; the merge's
// associativity and commutativity make the result independent of
// arrival order. Finally each partition's term/doc group index is
// rebuilt from its edges (InvalidateVertexCache).
func UpdateCounters(sub graph.Substrate, numTopics int) error {
	terms := sub.TermCounters()
	docs := sub.DocCounters()

	e := parallel.For(0, sub.NumPartitions(), 1, func(i int) error {
		part := sub.EdgePartition(i)

		termPartials := make(map[int32]counts.TC)
		docPartials := make(map[int32]counts.Sparse)
		for j := range part.Edges {
			edge := &part.Edges[j]
			tp := termPartials[edge.Term]
			if tp == nil {
				tp = counts.NewSparse()
			}
			dp := docPartials[edge.Doc]
			if dp == nil {
				dp = counts.NewSparse()
				docPartials[edge.Doc] = dp
			}
			for _, topic := range edge.Topics {
				if topic < 0 || int(topic) >= numTopics {
					return fmt.Errorf("partition %d: topic %d out of range [0, %d)",
						i, topic, numTopics)
				}
				tp.Inc(int(topic), 1)
				dp.Inc(int(topic), 1)
			}
			// Term partials promote eagerly; doc partials never do.
			if s, ok := tp.(counts.Sparse); ok && counts.ShouldPromote(s.Len(), numTopics) {
				tp = counts.Promote(s, numTopics)
			}
			termPartials[edge.Term] = tp
		}

		for term, tc := range termPartials {
			terms.MergePartial(int(term), tc)
		}
		for doc, dc := range docPartials {
			docs.MergePartial(int(doc), dc)
		}
		return nil
	})
	if e != nil {
		return e
	}

	for i := 0; i < sub.NumPartitions(); i++ {
		sub.EdgePartition(i).InvalidateVertexCache()
	}
	return nil
}

// LogLikelihoods are the three per-corpus sums the evaluator folds
// along the partition walk: the joint token log-likelihood (what
// perplexity is computed from), and the word-conditional and
// doc-conditional log-likelihoods at the current assignments, which
// track how well each half of the model explains the data on its own.
type LogLikelihoods struct {
	LLH    float64
	WLLH   float64
	DLLH   float64
	Tokens int64
}

// Perplexity converts the joint sum to exp(-llh/N).
func (l *LogLikelihoods) Perplexity() float64 {
	if l.Tokens == 0 {
		return 0
	}
	return math.Exp(-l.LLH / float64(l.Tokens))
}

// docDenomCache hands out 1/(sum_k n_dk + alphaSum) per doc, computed
// once on first request under a {0 unset, 1 writing, 2 ready} atomic
// mark so concurrent partition walks share the work without a lock.
type docDenomCache struct {
	marks  []int32
	denoms []float64
}

func newDocDenomCache(n int) *docDenomCache {
	return &docDenomCache{marks: make([]int32, n), denoms: make([]float64, n)}
}

func (c *docDenomCache) get(doc int32, docs *graph.VertexCounters, alphaSum float64) float64 {
	for {
		switch atomic.LoadInt32(&c.marks[doc]) {
		case 2:
			return c.denoms[doc]
		case 0:
			if atomic.CompareAndSwapInt32(&c.marks[doc], 0, 1) {
				var docLen int64
				if tc := docs.Snapshot(int(doc)); tc != nil {
					tc.ForEach(func(_ int, n int64) error {
						docLen += n
						return nil
					})
				}
				c.denoms[doc] = 1 / (float64(docLen) + alphaSum)
				atomic.StoreInt32(&c.marks[doc], 2)
				return c.denoms[doc]
			}
		default: // another goroutine is filling the slot; retry
		}
	}
}

// EvaluateLogLikelihoods folds per-token log-probabilities along the
// same per-term source-group walk the sampler uses, one goroutine per
// partition, reading topic counts from the substrate's committed
// vertex stores (run UpdateCounters first). numDocs bounds the doc id
// space for the shared denominator cache.
func EvaluateLogLikelihoods(sub graph.Substrate, m *Model, numDocs int) (*LogLikelihoods, error) {
	terms := sub.TermCounters()
	docs := sub.DocCounters()
	cache := newDocDenomCache(numDocs)

	var mu sync.Mutex
	total := &LogLikelihoods{}

	e := parallel.For(0, sub.NumPartitions(), 1, func(i int) error {
		part := sub.EdgePartition(i)
		var local LogLikelihoods

		var walkErr error
		part.ForEachTermGroup(func(term int32, edgeIdx []int) {
			if walkErr != nil {
				return
			}
			tc := terms.Snapshot(int(term))
			for _, j := range edgeIdx {
				edge := &part.Edges[j]
				dc := docs.Snapshot(int(edge.Doc))
				if dc == nil {
					walkErr = fmt.Errorf("doc %d has no committed counters", edge.Doc)
					return
				}
				docDenom := cache.get(edge.Doc, docs, m.AlphaSum)

				// Joint likelihood of the token under the mixture,
				// summed over the doc's active topics plus the
				// smoothing floor; identical for every occurrence of
				// this (term, doc) edge.
				var joint float64
				for t := 0; t < m.NumTopics(); t++ {
					var ntw int64
					if tc != nil {
						ntw = tc.At(t)
					}
					phi := (float64(ntw) + m.Beta) /
						(float64(m.GlobalTopicCounts.At(t)) + m.BetaSum)
					theta := (float64(dc.At(t)) + m.Alpha[t]) * docDenom
					joint += phi * theta
				}

				for _, topic := range edge.Topics {
					t := int(topic)
					var ntw int64
					if tc != nil {
						ntw = tc.At(t)
					}
					phi := (float64(ntw) + m.Beta) /
						(float64(m.GlobalTopicCounts.At(t)) + m.BetaSum)
					theta := (float64(dc.At(t)) + m.Alpha[t]) * docDenom

					local.LLH += math.Log(joint)
					local.WLLH += math.Log(phi)
					local.DLLH += math.Log(theta)
					local.Tokens++
				}
			}
		})
		if walkErr != nil {
			return walkErr
		}

		mu.Lock()
		defer mu.Unlock()
		total.LLH += local.LLH
		total.WLLH += local.WLLH
		total.DLLH += local.DLLH
		total.Tokens += local.Tokens
		return nil
	})
	if e != nil {
		return nil, e
	}
	return total, nil
}

// RebuildGlobalCounts reconstructs n_k by summing the committed term
// counters, the once-per-iteration rebuild the word-by-word family
// relies on instead of in-place mutation.
func RebuildGlobalCounts(terms *graph.VertexCounters, numTopics int) counts.Dense {
	nk := counts.NewDense(numTopics)
	for v := 0; v < terms.Len(); v++ {
		c := terms.Snapshot(v)
		if c == nil {
			continue
		}
		c.ForEach(func(topic int, count int64) error {
			nk.Inc(topic, int(count))
			return nil
		})
	}
	return nk
}
