package lda

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/wangkuiyi/vertexlda/counts"
)

const (
	testingAlpha           = 0.1
	testingBeta            = 0.01
	testingK               = 2
	testingTotalIterations = 110
)

func createTestingDocument(v *Vocabulary) *Document {
	rng := rand.New(rand.NewSource(1))
	return InitializeDocument([]string{"apple", "unknown", "orange"}, v, testingK, rng)
}

// createTestingModel builds:
//
//	word states:   topic 0    topic 1
//	      tiger:   <nil>
//	     orange:   nil        1
//	        cat:   <nil>
//	      apple:   nil        1
//	global states: topic 0    topic 1
//	               0          2
func createTestingModel() *Model {
	v, e := createTestingVocabulary()
	if e != nil {
		panic("createTestingModel: failed building testing vocabulary")
	}
	d := createTestingDocument(v)
	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	d.ApplyToModel(m)
	return m
}

var sprint = fmt.Sprint

func TestKernelBuildSmoothingOnlyBucket(t *testing.T) {
	m := createTestingModel()
	k := NewSparseLDAKernel(m)
	wantFactors := "[0.025 0.0004901960784313725]"
	if sprint(k.smoothingOnlyFactors) != wantFactors {
		t.Errorf("expecting smoothingOnlyFactors = %s, got %s",
			wantFactors, sprint(k.smoothingOnlyFactors))
	}
	wantSize := "0.0254902"
	if fmt.Sprintf("%.7f", k.smoothingOnlySize) != wantSize {
		t.Errorf("expecting smoothingOnlySize = %s, got %.7f",
			wantSize, k.smoothingOnlySize)
	}
}

func TestKernelBuildDocTopicBucket(t *testing.T) {
	m := createTestingModel()
	k := NewSparseLDAKernel(m)
	if k.docTopicSize != 0 {
		t.Errorf("expecting docTopicSize = 0, got %f", k.docTopicSize)
	}

	v, _ := createTestingVocabulary()
	d := createTestingDocument(v)
	k.buildDocTopicBucket(d)
	wantFactors := "[0 0.00980392156862745]"
	if sprint(k.docTopicFactors) != wantFactors {
		t.Errorf("expecting docTopicFactors = %s, got %v", wantFactors, k.docTopicFactors)
	}
	wantSize := "0.00980392156862745"
	if sprint(k.docTopicSize) != wantSize {
		t.Errorf("expecting docTopicSize = %s, got %.7f", wantSize, k.docTopicSize)
	}
}

func TestKernelBuildTopicWordBucket(t *testing.T) {
	m := createTestingModel()
	k := NewSparseLDAKernel(m)
	k.cacheCoefficients()
	k.buildTopicWordBucket(NewTermId(1)) // "orange"
	wantFactors := "[0 0.049019607843137254]"
	if sprint(k.topicWordFactors) != wantFactors {
		t.Errorf("expecting topicWordFactors = %s, got %v", wantFactors, k.topicWordFactors)
	}
	wantSize := "0.049019607843137254"
	if sprint(k.topicWordSize) != wantSize {
		t.Errorf("expecting topicWordSize = %s, got %s", wantSize, sprint(k.topicWordSize))
	}
}

func TestKernelCacheUpdateResetCoefficients(t *testing.T) {
	m := createTestingModel()
	k := NewSparseLDAKernel(m)
	wantCached := "[2.5 0.049019607843137254]"
	if sprint(k.coefficients) != wantCached {
		t.Errorf("expecting coefficients = %s, got %s", wantCached, sprint(k.coefficients))
	}

	v, _ := createTestingVocabulary()
	d := createTestingDocument(v)
	k.updateCoefficients(d)
	wantUpdated := "[2.5 1.0294117647058825]"
	if sprint(k.coefficients) != wantUpdated {
		t.Errorf("expecting coefficients = %s, got %s", wantUpdated, sprint(k.coefficients))
	}

	k.resetCoefficients(d)
	if sprint(k.coefficients) != wantCached {
		t.Errorf("expecting coefficients = %s, got %s", wantCached, sprint(k.coefficients))
	}
}

func TestKernelSample(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(-1))

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

	k := NewSparseLDAKernel(m)
	for iter := 0; iter < testingTotalIterations; iter++ {
		for _, d := range corpus {
			k.Sample(d, rng)
		}
	}

	want := &Model{
		GlobalTopicCounts: counts.Dense{4, 4},
		TermTopicCounts: []counts.TC{
			counts.Sparse{1: 2},
			counts.Sparse{0: 2},
			counts.Sparse{1: 2},
			counts.Sparse{0: 2},
		},
		Alpha:    []float64{0.1, 0.1},
		AlphaSum: 0.2,
		Beta:     0.01,
		BetaSum:  0.04,
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("expecting %v, got %v", want, m)
	}
}

func TestKernelSampleDiff(t *testing.T) {
	v, e := createTestingVocabulary()
	if e != nil {
		t.Fatalf("failed building testing vocabulary")
	}
	rng := rand.New(rand.NewSource(-1))

	corpus := []*Document{
		InitializeDocument([]string{"apple", "orange"}, v, testingK, rng),
		InitializeDocument([]string{"orange", "apple"}, v, testingK, rng),
		InitializeDocument([]string{"cat", "tiger"}, v, testingK, rng),
		InitializeDocument([]string{"tiger", "cat"}, v, testingK, rng),
	}

	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	diff := NewModel(testingK, testingV, testingAlpha, testingBeta)
	for _, doc := range corpus {
		doc.ApplyToModel(m)
		doc.ApplyToModel(diff)
	}

	k := NewSparseLDAKernel(m)
	k.SetDiff(diff)
	for iter := 0; iter < testingTotalIterations; iter++ {
		for _, d := range corpus {
			k.Sample(d, rng)
		}
	}

	if sprint(*m) != sprint(*diff) {
		t.Errorf("model does not equal diff.\nmodel: %v\ndiff: %v", *m, *diff)
	}
}
