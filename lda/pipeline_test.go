package lda

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/graph"
	"github.com/wangkuiyi/vertexlda/partition"
)

func buildTestingGraph(t *testing.T, numPartitions int) ([]*Document, *graph.MemSubstrate) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(3))
	docs := []*Document{
		InitializeDocument([]string{"apple", "orange", "apple"}, v, testingK, rng),
		InitializeDocument([]string{"cat", "tiger"}, v, testingK, rng),
		InitializeDocument([]string{"orange", "tiger"}, v, testingK, rng),
	}

	// Terms round-robin across partitions, docs to partition 0; the
	// doc side is irrelevant for byTerm edge placement.
	assign := make([]int, testingV+len(docs))
	for i := 0; i < testingV; i++ {
		assign[i] = i % numPartitions
	}
	router := partition.NewRouter(assign, testingV)

	parts := BuildGraph(docs, router, numPartitions)
	sub := graph.NewMemSubstrate(parts, testingV, len(docs), testingK)
	sub.SetRouter(router)
	return docs, sub
}

func TestUpdateCountersMatchesReferenceSum(t *testing.T) {
	docs, sub := buildTestingGraph(t, 2)
	if e := UpdateCounters(sub, testingK); e != nil {
		t.Fatalf("UpdateCounters failed: %v", e)
	}

	// Reference: a single-threaded model built straight from the docs.
	ref := NewModel(testingK, testingV, testingAlpha, testingBeta)
	for _, d := range docs {
		d.ApplyToModel(ref)
	}

	for term := 0; term < testingV; term++ {
		got := sub.TermCounters().Snapshot(term)
		want := ref.TermTopicCounts[term]
		for topic := 0; topic < testingK; topic++ {
			var g int64
			if got != nil {
				g = got.At(topic)
			}
			var w int64
			if want != nil {
				w = want.At(topic)
			}
			if g != w {
				t.Errorf("term %d topic %d: counter %d, reference %d", term, topic, g, w)
			}
		}
	}

	for d, doc := range docs {
		got := sub.DocCounters().Snapshot(d)
		for topic := 0; topic < testingK; topic++ {
			if got.At(topic) != doc.TopicCounts.At(topic) {
				t.Errorf("doc %d topic %d: counter %d, reference %d",
					d, topic, got.At(topic), doc.TopicCounts.At(topic))
			}
		}
	}

	nk := RebuildGlobalCounts(sub.TermCounters(), testingK)
	if !reflect.DeepEqual(nk, ref.GlobalTopicCounts) {
		t.Errorf("rebuilt global counts %v, reference %v", nk, ref.GlobalTopicCounts)
	}
}

func TestUpdateCountersOnEmptyGraphIsNoop(t *testing.T) {
	parts := []*graph.EdgePartition{graph.NewEdgePartition(nil)}
	sub := graph.NewMemSubstrate(parts, testingV, 1, testingK)
	if e := UpdateCounters(sub, testingK); e != nil {
		t.Fatalf("UpdateCounters failed: %v", e)
	}
	for term := 0; term < testingV; term++ {
		if sub.TermCounters().Snapshot(term) != nil {
			t.Errorf("empty graph touched term %d", term)
		}
	}
	if sub.DocCounters().Snapshot(0) != nil {
		t.Errorf("empty graph touched doc 0")
	}
}

func TestUpdateCountersRejectsOutOfRangeTopic(t *testing.T) {
	parts := []*graph.EdgePartition{graph.NewEdgePartition([]graph.Edge{
		{Term: 0, Doc: 0, Topics: []int32{int32(testingK)}},
	})}
	sub := graph.NewMemSubstrate(parts, testingV, 1, testingK)
	if e := UpdateCounters(sub, testingK); e == nil {
		t.Errorf("expecting an error for an out-of-range topic assignment")
	}
}

func TestBuildGraphGroupsOccurrences(t *testing.T) {
	docs, sub := buildTestingGraph(t, 2)

	var tokens int
	for i := 0; i < sub.NumPartitions(); i++ {
		tokens += sub.EdgePartition(i).NumTokens()
	}
	var want int
	for _, d := range docs {
		want += d.Len()
	}
	if tokens != want {
		t.Errorf("graph carries %d tokens, corpus has %d", tokens, want)
	}

	// Every edge must live in the partition its source term routes to.
	for i := 0; i < sub.NumPartitions(); i++ {
		for _, e := range sub.EdgePartition(i).Edges {
			if p := sub.Router().TermPartition(e.Term); p != i {
				t.Errorf("edge of term %d in partition %d, routed to %d", e.Term, i, p)
			}
		}
	}
}

func TestEvaluateLogLikelihoods(t *testing.T) {
	docs, sub := buildTestingGraph(t, 2)
	if e := UpdateCounters(sub, testingK); e != nil {
		t.Fatalf("UpdateCounters failed: %v", e)
	}

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	m.TermTopicCounts = SnapshotTermCounts(sub.TermCounters())
	m.GlobalTopicCounts = RebuildGlobalCounts(sub.TermCounters(), testingK)

	ll, e := EvaluateLogLikelihoods(sub, m, len(docs))
	if e != nil {
		t.Fatalf("EvaluateLogLikelihoods failed: %v", e)
	}

	var wantTokens int64
	for _, d := range docs {
		wantTokens += int64(d.Len())
	}
	if ll.Tokens != wantTokens {
		t.Errorf("evaluated %d tokens, corpus has %d", ll.Tokens, wantTokens)
	}
	if ll.LLH >= 0 || ll.WLLH >= 0 || ll.DLLH >= 0 {
		t.Errorf("log-likelihood sums must be negative, got %+v", ll)
	}
	if p := ll.Perplexity(); p <= 1 {
		t.Errorf("perplexity must exceed 1 on a non-trivial corpus, got %f", p)
	}
}

// Perplexity must not depend on the order edges appear within a
// partition.
func TestEvaluateLogLikelihoodsOrderInvariant(t *testing.T) {
	docs, sub := buildTestingGraph(t, 1)
	if e := UpdateCounters(sub, testingK); e != nil {
		t.Fatalf("UpdateCounters failed: %v", e)
	}
	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	m.TermTopicCounts = SnapshotTermCounts(sub.TermCounters())
	m.GlobalTopicCounts = RebuildGlobalCounts(sub.TermCounters(), testingK)

	a, e := EvaluateLogLikelihoods(sub, m, len(docs))
	if e != nil {
		t.Fatalf("EvaluateLogLikelihoods failed: %v", e)
	}

	part := sub.EdgePartition(0)
	for i, j := 0, len(part.Edges)-1; i < j; i, j = i+1, j-1 {
		part.Edges[i], part.Edges[j] = part.Edges[j], part.Edges[i]
	}
	part.InvalidateVertexCache()

	b, e := EvaluateLogLikelihoods(sub, m, len(docs))
	if e != nil {
		t.Fatalf("EvaluateLogLikelihoods failed: %v", e)
	}
	if math.Abs(a.LLH-b.LLH) > 1e-9 || a.Tokens != b.Tokens {
		t.Errorf("edge order changed the evaluation: %+v vs %+v", a, b)
	}
}

// Sanity for the promotion path: a term whose partial accumulates
// K/8 distinct topics inside one partition must arrive Dense.
func TestUpdateCountersPromotesTermPartials(t *testing.T) {
	const k = 16 // threshold K/8 = 2
	parts := []*graph.EdgePartition{graph.NewEdgePartition([]graph.Edge{
		{Term: 0, Doc: 0, Topics: []int32{1, 2}},
	})}
	sub := graph.NewMemSubstrate(parts, 1, 1, k)
	if e := UpdateCounters(sub, k); e != nil {
		t.Fatalf("UpdateCounters failed: %v", e)
	}
	if _, ok := sub.TermCounters().Snapshot(0).(counts.Dense); !ok {
		t.Errorf("expecting term 0 promoted to Dense, got %T", sub.TermCounters().Snapshot(0))
	}
	if _, ok := sub.DocCounters().Snapshot(0).(counts.Sparse); !ok {
		t.Errorf("expecting doc 0 to stay Sparse, got %T", sub.DocCounters().Snapshot(0))
	}
}
