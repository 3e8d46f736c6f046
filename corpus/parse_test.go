package corpus

import (
	"strings"
	"testing"

	"math/rand"

	"github.com/wangkuiyi/vertexlda/lda"
)

func testVocab(t *testing.T) *lda.Vocabulary {
	v := lda.NewVocabulary()
	if e := v.Load(strings.NewReader("apple\norange\ncat\ntiger\n")); e != nil {
		t.Fatalf("failed loading test vocabulary: %v", e)
	}
	return v
}

func TestLoadRaw(t *testing.T) {
	v := testVocab(t)
	rng := rand.New(rand.NewSource(1))
	docs, e := Load(strings.NewReader("apple orange\ncat tiger cat\n"), v,
		Options{Format: Raw, NumTopics: 2}, rng)
	if e != nil {
		t.Fatalf("Load failed: %v", e)
	}
	if len(docs) != 2 {
		t.Fatalf("expecting 2 documents, got %d", len(docs))
	}
	if docs[0].Len() != 2 || docs[1].Len() != 3 {
		t.Errorf("expecting lengths 2 and 3, got %d and %d", docs[0].Len(), docs[1].Len())
	}
}

func TestLoadRawIgnoresDocId(t *testing.T) {
	v := testVocab(t)
	rng := rand.New(rand.NewSource(1))
	docs, e := Load(strings.NewReader("doc1 apple orange\n"), v,
		Options{Format: Raw, NumTopics: 2, IgnoreDocId: true}, rng)
	if e != nil {
		t.Fatalf("Load failed: %v", e)
	}
	if len(docs) != 1 || docs[0].Len() != 2 {
		t.Fatalf("expecting one 2-token document, got %+v", docs)
	}
}

func TestLoadBow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	docs, e := Load(strings.NewReader("0 1 2\n3 3 3\n"), nil,
		Options{Format: Bow, NumTopics: 2}, rng)
	if e != nil {
		t.Fatalf("Load failed: %v", e)
	}
	if len(docs) != 2 {
		t.Fatalf("expecting 2 documents, got %d", len(docs))
	}
	if docs[0].Len() != 3 || docs[1].Len() != 3 {
		t.Errorf("expecting lengths 3 and 3, got %d and %d", docs[0].Len(), docs[1].Len())
	}
	if n := docs[1].TopicCounts.At(0) + docs[1].TopicCounts.At(1); n != 3 {
		t.Errorf("expecting the 3 occurrences of term 3 to total a topic count of 3, got %d", n)
	}
}

func TestLoadSemiFullRateMatchesBow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	docs, e := Load(strings.NewReader("0:2 1:3\n"), nil,
		Options{Format: Semi, NumTopics: 2, InputSemiRate: 1}, rng)
	if e != nil {
		t.Fatalf("Load failed: %v", e)
	}
	if len(docs) != 1 || docs[0].Len() != 5 {
		t.Fatalf("expecting one 5-token document, got %+v", docs)
	}
}

func TestLoadSemiZeroRateDropsEverything(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	docs, e := Load(strings.NewReader("0:2 1:3\n"), nil,
		Options{Format: Semi, NumTopics: 2, InputSemiRate: 0, MinDocLen: -1}, rng)
	if e != nil {
		t.Fatalf("Load failed: %v", e)
	}
	if len(docs) != 1 || docs[0].Len() != 0 {
		t.Fatalf("expecting one empty document, got %+v", docs)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, e := Load(strings.NewReader("1 2\n"), nil, Options{Format: "bogus"}, rng)
	if e == nil {
		t.Fatalf("expecting an error for an unknown format")
	}
}

func TestLoadEnforcesLengthBounds(t *testing.T) {
	v := testVocab(t)
	rng := rand.New(rand.NewSource(1))
	docs, e := Load(strings.NewReader("apple\napple orange\napple orange cat\n"), v,
		Options{Format: Raw, NumTopics: 2, MinDocLen: 2, MaxDocLen: 2}, rng)
	if e != nil {
		t.Fatalf("Load failed: %v", e)
	}
	if len(docs) != 1 || docs[0].Len() != 2 {
		t.Fatalf("expecting exactly one 2-token document, got %+v", docs)
	}
}
