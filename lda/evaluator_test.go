package lda

import (
	"fmt"
	"testing"
)

func TestEvaluatorPerplexity(t *testing.T) {
	v, _ := createTestingVocabulary()
	d := createTestingDocument(v)
	m := createTestingModel()
	ev := NewEvaluator(m, 0)
	truth := "-1.4515175322974125 2"
	if s := fmt.Sprint(ev.Perplexity(d)); s != truth {
		t.Errorf("expecting %s, got %s", truth, s)
	}
}
