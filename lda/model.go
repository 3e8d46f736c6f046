package lda

import (
	"fmt"
	"io"
	"sort"

	"github.com/wangkuiyi/vertexlda/counts"
)

// Model is the authoritative, process-local view of the term-topic
// and global topic counters: GlobalTopicCounts is n_k (dense, one
// slot per topic), TermTopicCounts[t] is n_{k,t} for term t (sparse
// until promoted). Document-topic counters live on Document, not
// here, matching the asymmetry of the bipartite graph: there are far
// fewer terms than documents, so the model only ever materializes the
// term side in memory at once.
type Model struct {
	GlobalTopicCounts counts.Dense
	TermTopicCounts   []counts.TC

	// Alpha is per-topic, supporting the alphaAS (asymmetric alpha)
	// CLI knob; AlphaSum is its running total, cached to avoid
	// resumming K floats every token.
	Alpha    []float64
	AlphaSum float64

	// Beta is symmetric across terms (nothing in this domain calls
	// for an asymmetric word prior); BetaSum = Beta * VocabSize.
	Beta    float64
	BetaSum float64
}

func NewModel(numTopics, vocabSize int, alpha, beta float64) *Model {
	if numTopics < 2 {
		panic(fmt.Sprintf("numTopics = %d, less than 2", numTopics))
	}
	if vocabSize < 2 {
		panic(fmt.Sprintf("vocabSize = %d, less than 2", vocabSize))
	}
	if alpha <= 0 {
		panic(fmt.Sprintf("alpha = %f, must be > 0", alpha))
	}
	if beta <= 0 {
		panic(fmt.Sprintf("beta = %f, must be > 0", beta))
	}
	m := &Model{
		GlobalTopicCounts: counts.NewDense(numTopics),
		TermTopicCounts:   make([]counts.TC, vocabSize),
		Alpha:             make([]float64, numTopics),
		AlphaSum:          alpha * float64(numTopics),
		Beta:              beta,
		BetaSum:           beta * float64(vocabSize),
	}
	for i := range m.Alpha {
		m.Alpha[i] = alpha
	}
	return m
}

// NewModelAsymmetric builds a model whose per-topic prior is given
// explicitly, for the alphaAS CLI flag's asymmetric-alpha mode.
func NewModelAsymmetric(alpha []float64, vocabSize int, beta float64) *Model {
	numTopics := len(alpha)
	m := NewModel(numTopics, vocabSize, 1.0, beta)
	copy(m.Alpha, alpha)
	var sum float64
	for _, a := range alpha {
		sum += a
	}
	m.AlphaSum = sum
	return m
}

func (m *Model) NumTopics() int { return m.GlobalTopicCounts.Len() }
func (m *Model) VocabSize() int { return cap(m.TermTopicCounts) }

// TermCounts returns the term-topic counter for id, lazily allocating
// a Sparse vector on first access so untouched terms cost nothing.
func (m *Model) TermCounts(id TermId) counts.TC {
	i := id.Real()
	if c := m.TermTopicCounts[i]; c != nil {
		return c
	}
	c := counts.NewAuto()
	m.TermTopicCounts[i] = c
	return c
}

// PromoteIfNeeded swaps a term's counter from Sparse to Dense once its
// active size crosses K/8, the rule shared with every other vertex
// counter in the graph.
func (m *Model) PromoteIfNeeded(id TermId) {
	i := id.Real()
	if s, ok := m.TermTopicCounts[i].(counts.Sparse); ok {
		if counts.ShouldPromote(s.Len(), m.NumTopics()) {
			m.TermTopicCounts[i] = counts.Promote(s, m.NumTopics())
		}
	}
}

// Accumulate merges partial per-term count deltas (as produced by a
// worker's local diff accumulator) into the authoritative model:
// positive counts increment, negative counts decrement. This is the
// single-process analogue of the distributed counter-update
// aggregation in aggregate.go; srv.Aggregator.Init folds every
// shipped diff through it. It does not promote sparse counters to
// dense; PromoteIfNeeded does that for one term when called.
func (m *Model) Accumulate(deltas map[int32]counts.TC) {
	for term, delta := range deltas {
		cur := m.TermTopicCounts[term]
		if cur == nil {
			m.TermTopicCounts[term] = delta
		} else {
			delta.ForEach(func(topic int, c int64) error {
				if c > 0 {
					cur.Inc(topic, int(c))
				} else if c < 0 {
					cur.Dec(topic, int(-c))
				}
				return nil
			})
		}
		delta.ForEach(func(topic int, c int64) error {
			if c > 0 {
				m.GlobalTopicCounts.Inc(topic, int(c))
			} else if c < 0 {
				m.GlobalTopicCounts.Dec(topic, int(-c))
			}
			return nil
		})
	}
}

// ApplyDiff folds another model's counters into this one, treating
// them as signed deltas: the single-process commit step for kernels
// (the word-by-word family) that record changes in a diff instead of
// mutating the authoritative counters mid-pass. The distributed
// driver ships the same diffs through aggregate.go instead.
func (m *Model) ApplyDiff(diff *Model) {
	for term, c := range diff.TermTopicCounts {
		if c == nil {
			continue
		}
		cur := m.TermCounts(NewTermId(int32(term)))
		c.ForEach(func(topic int, delta int64) error {
			if delta > 0 {
				cur.Inc(topic, int(delta))
			} else if delta < 0 {
				cur.Dec(topic, int(-delta))
			}
			return nil
		})
	}
	m.GlobalTopicCounts.Add(diff.GlobalTopicCounts)
}

// Clone deep-copies the model field-by-field rather than via gob (gob
// round-tripping would work too, but a direct copy avoids paying
// encode/decode cost on every checkpoint-diff test).
func (m *Model) Clone() *Model {
	n := NewModel(m.NumTopics(), m.VocabSize(), 1.0, 1.0)
	copy(n.Alpha, m.Alpha)
	n.AlphaSum = m.AlphaSum
	n.Beta = m.Beta
	n.BetaSum = m.BetaSum
	copy(n.GlobalTopicCounts, m.GlobalTopicCounts)
	for i, c := range m.TermTopicCounts {
		if c != nil {
			n.TermTopicCounts[i] = c.Clone()
		}
	}
	return n
}

// TermWeight pairs a term with its occurrence count under some topic.
type TermWeight struct {
	Term  TermId
	Count int64
}

// GetTopWords returns every term with nonzero mass under topic,
// sorted by descending count, walking TermTopicCounts directly since
// terms are this model's sparse axis.
func (m *Model) GetTopWords(topic int) []TermWeight {
	var out []TermWeight
	for term, c := range m.TermTopicCounts {
		if c == nil {
			continue
		}
		if n := c.At(topic); n > 0 {
			out = append(out, TermWeight{NewTermId(int32(term)), n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// PrintTopics writes, for every topic, its total mass and the terms
// that contribute to it.
func (m *Model) PrintTopics(w io.Writer, v *Vocabulary) {
	m.GlobalTopicCounts.ForEach(func(topic int, n int64) error {
		fmt.Fprintf(w, "Topic %05d Nt %05d:", topic, n)
		for term, c := range m.TermTopicCounts {
			if c == nil {
				continue
			}
			if cnt := c.At(topic); cnt > 0 {
				fmt.Fprintf(w, " %s (%d)", v.Token(NewTermId(int32(term))), cnt)
			}
		}
		fmt.Fprintf(w, "\n")
		return nil
	})
}
