package lda

import (
	"math/rand"
	"testing"

	"github.com/wangkuiyi/vertexlda/dist"
)

func TestLightLDAKernelPreservesTotalCounts(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(11))

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

	k := NewLightLDAKernel(m, dist.NewFlatDist(), 2)
	for iter := 0; iter < testingTotalIterations; iter++ {
		for term := int32(0); term < testingV; term++ {
			var docs []*Document
			var positions []int
			for _, d := range corpus {
				for pos, tid := range d.Terms {
					if tid.Real() == term {
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

	after := m.GlobalTopicCounts.At(0) + m.GlobalTopicCounts.At(1)
	if after != before {
		t.Errorf("expecting total token count to be preserved: before=%d after=%d", before, after)
	}
}

func TestLightLDAKernelDiffTracksModel(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(11))

	corpus := []*Document{
		InitializeDocument([]string{"apple", "orange"}, v, testingK, rng),
		InitializeDocument([]string{"orange", "apple"}, v, testingK, rng),
	}

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	diff := NewModel(testingK, testingV, testingAlpha, testingBeta)
	for _, d := range corpus {
		d.ApplyToModel(m)
		d.ApplyToModel(diff)
	}

	k := NewLightLDAKernel(m, dist.NewFlatDist(), 1)
	k.SetDiff(diff)
	for iter := 0; iter < testingTotalIterations; iter++ {
		for _, d := range corpus {
			for pos, tid := range d.Terms {
				k.SampleOccurrence(d, tid, pos, rng)
			}
		}
	}

	if m.GlobalTopicCounts.At(0) != diff.GlobalTopicCounts.At(0) ||
		m.GlobalTopicCounts.At(1) != diff.GlobalTopicCounts.At(1) {
		t.Errorf("diff global counts %v do not match model %v", diff.GlobalTopicCounts, m.GlobalTopicCounts)
	}
}

func TestLightLDAKernelRejectsWithoutPanicking(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(3))
	d := InitializeDocument([]string{"apple", "orange", "apple"}, v, testingK, rng)

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	d.ApplyToModel(m)

	k := NewLightLDAKernel(m, dist.NewFlatDist(), 4)
	for i := 0; i < 50; i++ {
		for pos, tid := range d.Terms {
			k.SampleOccurrence(d, tid, pos, rng)
		}
	}
}
