package lda

import (
	"math/rand"

	"github.com/wangkuiyi/vertexlda/counts"
)

// Document is the doc-vertex side of the bipartite token graph:
// TopicCounts is n_{d,k} kept in descending order (SparseLDA's
// doc-topic bucket walks it from most to least frequent topic), Terms
// and Topics are the parallel token/assignment arrays making up the
// document's edge occurrence list.
type Document struct {
	TopicCounts *counts.Ordered
	Terms       []TermId
	Topics      []int32
}

func (d *Document) Len() int { return len(d.Terms) }

// InitializeDocument tokenizes words against v, assigns each token a
// uniformly random initial topic, and records the resulting counts.
// Unknown tokens are silently dropped: a vocabulary built from the
// training corpus never drops anything at train time; at inference
// time over held-out text, unseen words simply contribute nothing.
func InitializeDocument(words []string, v *Vocabulary, numTopics int, rng *rand.Rand) *Document {
	d := &Document{
		Terms:       make([]TermId, 0, len(words)),
		Topics:      make([]int32, 0, len(words)),
		TopicCounts: counts.NewOrderedAndReserve(len(words)),
	}
	for _, w := range words {
		id := v.Id(w)
		if id.Real() < 0 {
			continue
		}
		topic := rng.Intn(numTopics)
		d.Terms = append(d.Terms, id)
		d.Topics = append(d.Topics, int32(topic))
		d.TopicCounts.Inc(topic, 1)
	}
	return d
}

// ApplyToModel records every token's initial assignment into m,
// exactly as InitializeDocument leaves it. Used to seed a Model before
// the first sampling pass, and by tests to construct fixtures.
func (d *Document) ApplyToModel(m *Model) {
	for i := range d.Terms {
		m.TermCounts(d.Terms[i]).Inc(int(d.Topics[i]), 1)
		m.GlobalTopicCounts.Inc(int(d.Topics[i]), 1)
	}
}
