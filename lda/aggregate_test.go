package lda

import (
	"testing"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/graph"
)

func TestAggregateTermCounters(t *testing.T) {
	diffA := NewModel(testingK, testingV, testingAlpha, testingBeta)
	diffA.TermTopicCounts[0] = counts.Sparse{0: 3}
	diffA.GlobalTopicCounts.Inc(0, 3)

	diffB := NewModel(testingK, testingV, testingAlpha, testingBeta)
	diffB.TermTopicCounts[0] = counts.Sparse{0: 2, 1: 1}
	diffB.GlobalTopicCounts.Inc(0, 2)
	diffB.GlobalTopicCounts.Inc(1, 1)

	counters := graph.NewVertexCounters(testingV, testingK)
	if e := AggregateTermCounters(counters, []*Model{diffA, diffB}); e != nil {
		t.Fatalf("AggregateTermCounters failed: %v", e)
	}

	got := counters.Snapshot(0)
	if got.At(0) != 5 || got.At(1) != 1 {
		t.Errorf("expecting term 0 counts {0:5 1:1}, got 0=%d 1=%d", got.At(0), got.At(1))
	}
	if counters.Snapshot(1) != nil {
		t.Errorf("expecting term 1 untouched, got %v", counters.Snapshot(1))
	}
}

func TestAggregateGlobalCounts(t *testing.T) {
	base := counts.NewDense(testingK)

	diffA := NewModel(testingK, testingV, testingAlpha, testingBeta)
	diffA.GlobalTopicCounts.Inc(0, 3)

	diffB := NewModel(testingK, testingV, testingAlpha, testingBeta)
	diffB.GlobalTopicCounts.Inc(0, 2)
	diffB.GlobalTopicCounts.Inc(1, 4)

	AggregateGlobalCounts(base, []*Model{diffA, diffB})

	if base.At(0) != 5 || base.At(1) != 4 {
		t.Errorf("expecting base = [5 4], got [%d %d]", base.At(0), base.At(1))
	}
}

func TestSnapshotTermCounts(t *testing.T) {
	counters := graph.NewVertexCounters(testingV, testingK)
	counters.MergePartial(2, counts.Sparse{1: 4})

	snap := SnapshotTermCounts(counters)
	if len(snap) != testingV {
		t.Fatalf("expecting %d entries, got %d", testingV, len(snap))
	}
	if snap[2] == nil || snap[2].At(1) != 4 {
		t.Errorf("expecting snap[2].At(1) == 4, got %v", snap[2])
	}
	if snap[0] != nil {
		t.Errorf("expecting untouched term to snapshot nil, got %v", snap[0])
	}
}
