package lda

import (
	"github.com/wangkuiyi/parallel"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/graph"
)

// AggregateTermCounters folds every worker's local diff into the
// partition's authoritative term-vertex counter store: one call to
// graph.VertexCounters.MergePartial per (term, diff) pair that
// actually touched that term, generalized from a single mutex-guarded
// model to the lock-free per-vertex store so the merge itself can run
// one goroutine per term instead of serializing every shard's diff.
func AggregateTermCounters(counters *graph.VertexCounters, diffs []*Model) error {
	vocabSize := counters.Len()
	return parallel.For(0, vocabSize, 1, func(term int) error {
		for _, d := range diffs {
			if d == nil {
				continue
			}
			c := d.TermTopicCounts[term]
			if c == nil {
				continue
			}
			counters.MergePartial(term, c)
		}
		return nil
	})
}

// AggregateGlobalCounts sums every diff's GlobalTopicCounts into base,
// in place. Unlike the per-term counters, the global vector is one
// small dense array shared by the whole partition, so a sequential
// elementwise sum (no per-slot atomics) is the cheaper merge.
func AggregateGlobalCounts(base counts.Dense, diffs []*Model) {
	for _, d := range diffs {
		if d == nil {
			continue
		}
		base.Add(d.GlobalTopicCounts)
	}
}

// SnapshotTermCounts materializes a partition's authoritative
// term-vertex counters back into a plain []counts.TC, in the shape
// Model.TermTopicCounts expects, for callers (the evaluator, model
// checkpointing) that still want a single in-memory Model view rather
// than querying the VertexCounters store per term.
func SnapshotTermCounts(counters *graph.VertexCounters) []counts.TC {
	out := make([]counts.TC, counters.Len())
	for term := 0; term < counters.Len(); term++ {
		out[term] = counters.Snapshot(term)
	}
	return out
}
