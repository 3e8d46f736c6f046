package lda

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/wangkuiyi/vertexlda/dist"
)

const testingAlphaAS = 0.1

func runWordByWordPass(k *WordByWordKernel, corpus []*Document, rng *rand.Rand) {
	for term := int32(0); term < testingV; term++ {
		var docs []*Document
		var positions []int
		for _, d := range corpus {
			for pos, tid := range d.Terms {
				if tid.Real() == int32(term) {
					docs = append(docs, d)
					positions = append(positions, pos)
				}
			}
		}
		if len(docs) > 0 {
			k.SampleTermGroup(NewTermId(term), docs, positions, rng)
		}
	}
}

func TestWordByWordKernelPreservesTotalCounts(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(7))

	corpus := []*Document{
		InitializeDocument([]string{"apple", "orange"}, v, testingK, rng),
		InitializeDocument([]string{"orange", "apple"}, v, testingK, rng),
		InitializeDocument([]string{"cat", "tiger"}, v, testingK, rng),
		InitializeDocument([]string{"tiger", "cat"}, v, testingK, rng),
	}

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	for _, d := range corpus {
		d.ApplyToModel(m)
	}

	before := m.GlobalTopicCounts.At(0) + m.GlobalTopicCounts.At(1)

	k := NewWordByWordKernel(m, dist.NewFlatDist(), testingAlphaAS)
	for iter := 0; iter < testingTotalIterations; iter++ {
		diff := NewModel(testingK, testingV, testingAlpha, testingBeta)
		k.SetDiff(diff)
		runWordByWordPass(k, corpus, rng)
		k.SetDiff(nil)
		m.ApplyDiff(diff)
		k.RefreshGlobals()
	}

	after := m.GlobalTopicCounts.At(0) + m.GlobalTopicCounts.At(1)
	if after != before {
		t.Errorf("expecting total token count to be preserved: before=%d after=%d", before, after)
	}

	// The per-topic term counts must still sum to the global counts.
	for topic := 0; topic < testingK; topic++ {
		var termTotal int64
		for term := range m.TermTopicCounts {
			if c := m.TermTopicCounts[term]; c != nil {
				termTotal += c.At(topic)
			}
		}
		if termTotal != m.GlobalTopicCounts.At(topic) {
			t.Errorf("topic %d: term counts sum to %d, global count is %d",
				topic, termTotal, m.GlobalTopicCounts.At(topic))
		}
	}
}

func TestWordByWordKernelFreezesModelCounters(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(7))

	corpus := []*Document{
		InitializeDocument([]string{"apple", "orange"}, v, testingK, rng),
		InitializeDocument([]string{"orange", "apple"}, v, testingK, rng),
	}

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	for _, d := range corpus {
		d.ApplyToModel(m)
	}
	snapshot := m.Clone()

	k := NewWordByWordKernel(m, dist.NewFlatDist(), testingAlphaAS)
	diff := NewModel(testingK, testingV, testingAlpha, testingBeta)
	k.SetDiff(diff)
	runWordByWordPass(k, corpus, rng)

	if !reflect.DeepEqual(m.GlobalTopicCounts, snapshot.GlobalTopicCounts) {
		t.Errorf("a sampling pass mutated the global counters: %v -> %v",
			snapshot.GlobalTopicCounts, m.GlobalTopicCounts)
	}
	for term := range m.TermTopicCounts {
		got, want := m.TermTopicCounts[term], snapshot.TermTopicCounts[term]
		if !reflect.DeepEqual(got, want) {
			t.Errorf("a sampling pass mutated term %d's counters: %v -> %v",
				term, want, got)
		}
	}
}

func TestWordByWordKernelDeterministicGivenSeed(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}

	run := func() []int32 {
		rng := rand.New(rand.NewSource(7))
		corpus := []*Document{
			InitializeDocument([]string{"apple", "orange", "cat"}, v, testingK, rng),
			InitializeDocument([]string{"tiger", "apple"}, v, testingK, rng),
		}
		m := NewModel(testingK, testingV, testingAlpha, testingBeta)
		for _, d := range corpus {
			d.ApplyToModel(m)
		}
		k := NewWordByWordKernel(m, dist.NewAliasTable(), testingAlphaAS)
		for iter := 0; iter < 10; iter++ {
			diff := NewModel(testingK, testingV, testingAlpha, testingBeta)
			k.SetDiff(diff)
			runWordByWordPass(k, corpus, rng)
			k.SetDiff(nil)
			m.ApplyDiff(diff)
			k.RefreshGlobals()
		}
		var topics []int32
		for _, d := range corpus {
			topics = append(topics, d.Topics...)
		}
		return topics
	}

	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("two identically seeded runs diverged: %v vs %v", a, b)
	}
}

func TestWordByWordKernelSkipsVirtualTerms(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(7))
	d := InitializeDocument([]string{"apple", "orange"}, v, testingK, rng)

	// Append a virtual-term occurrence by hand, the shape semi input
	// produces for class labels.
	vt := NewVirtualTermId(0)
	d.Terms = append(d.Terms, vt)
	d.Topics = append(d.Topics, 1)
	d.TopicCounts.Inc(1, 1)

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	d.ApplyToModel(m)

	k := NewWordByWordKernel(m, dist.NewFlatDist(), testingAlphaAS)
	k.SkipVirtualTerms(true)
	diff := NewModel(testingK, testingV, testingAlpha, testingBeta)
	k.SetDiff(diff)
	for i := 0; i < 20; i++ {
		k.SampleTermGroup(vt, []*Document{d}, []int{2}, rng)
	}

	if d.Topics[2] != 1 {
		t.Errorf("virtual term's assignment changed to %d", d.Topics[2])
	}
	if diff.GlobalTopicCounts.At(0) != 0 || diff.GlobalTopicCounts.At(1) != 0 {
		t.Errorf("virtual term contributed counter changes: %v", diff.GlobalTopicCounts)
	}
}
