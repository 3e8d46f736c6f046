package modelio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/lda"
)

func testModelAndVocab(t *testing.T) (*lda.Model, *lda.Vocabulary) {
	v := lda.NewVocabulary()
	if e := v.Load(strings.NewReader("apple\norange\n")); e != nil {
		t.Fatalf("failed loading test vocabulary: %v", e)
	}
	m := lda.NewModel(2, v.Len(), 0.1, 0.01)
	m.TermTopicCounts[int(v.Id("apple").Real())] = counts.Sparse{0: 3}
	m.TermTopicCounts[int(v.Id("orange").Real())] = counts.Sparse{1: 2}
	m.GlobalTopicCounts.Inc(0, 3)
	m.GlobalTopicCounts.Inc(1, 2)
	return m, v
}

func TestWriteTermTopic(t *testing.T) {
	m, v := testModelAndVocab(t)
	var buf bytes.Buffer
	WriteTermTopic(&buf, m, v, false)
	out := buf.String()
	if !strings.Contains(out, "apple") || !strings.Contains(out, "orange") {
		t.Errorf("expecting both terms in output, got:\n%s", out)
	}
}

func TestWriteDocTopic(t *testing.T) {
	d := &lda.Document{TopicCounts: counts.NewOrdered()}
	d.TopicCounts.Inc(0, 2)
	d.TopicCounts.Inc(1, 1)

	var buf bytes.Buffer
	WriteDocTopic(&buf, []*lda.Document{d}, 2)
	out := buf.String()
	if !strings.Contains(out, "2") || !strings.Contains(out, "1") {
		t.Errorf("expecting topic counts in output, got:\n%s", out)
	}
}
