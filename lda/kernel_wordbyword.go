package lda

import (
	"math/rand"

	"github.com/wangkuiyi/vertexlda/dist"
)

// WordByWordKernel implements the ZenLDA/ZenSemiLDA family: the outer
// loop runs over terms (source groups) instead of documents, so the
// expensive term-level proposal table amortizes across every
// occurrence of a term in one pass. Unlike SparseLDAKernel and
// LightLDAKernel, this kernel never mutates the model's term or
// global counters while sampling: new assignments are written back to
// the documents and recorded in the diff, and the authoritative
// counters are reconstructed by the counter-update phase afterwards.
// Within one pass every token therefore samples against the same
// frozen term/global counts, which is what makes a run deterministic
// given a fixed seed and sharding, regardless of thread count.
//
// The per-token conditional is the asymmetric-prior decomposition of
// posterior.go: the dense ab and term-sparse wa buckets are folded
// into one table per source group, the doc-sparse dwb bucket is
// walked exactly per occurrence, and a draw that lands on the token's
// current topic passes through the rejection correction so the "-1
// adjustment" is exact even though the table was built from
// unadjusted counts.
type WordByWordKernel struct {
	model *Model
	diff  *Model

	post      *Posterior
	accel     dist.Discrete // ab+wa table, rebuilt once per term group
	alphaAS   float64
	numTokens int64

	// skipVirtual makes the kernel leave virtual terms' assignments
	// untouched, the ZenSemiLDA variant.
	skipVirtual bool

	weights  []float64 // scratch, length K
	curTerm  TermId
	prepared bool
}

func NewWordByWordKernel(m *Model, accel dist.Discrete, alphaAS float64) *WordByWordKernel {
	k := &WordByWordKernel{
		model:   m,
		accel:   accel,
		alphaAS: alphaAS,
		post:    NewPosterior(m.NumTopics()),
		weights: make([]float64, m.NumTopics()),
	}
	k.RefreshGlobals()
	return k
}

func (k *WordByWordKernel) SetDiff(d *Model) { k.diff = d }
func (k *WordByWordKernel) GetDiff() *Model  { return k.diff }

// SkipVirtualTerms toggles the ZenSemiLDA behavior: occurrences of
// virtual terms keep their current assignment.
func (k *WordByWordKernel) SkipVirtualTerms(skip bool) { k.skipVirtual = skip }

// RefreshGlobals recomputes the shared denominator vectors from the
// model's current global counters. The driver calls this once per
// iteration, after the counter-update phase; calling it mid-pass
// would break the frozen-counter determinism contract.
func (k *WordByWordKernel) RefreshGlobals() {
	var n int64
	k.model.GlobalTopicCounts.ForEach(func(_ int, c int64) error {
		n += c
		return nil
	})
	k.numTokens = n
	k.post.Refresh(k.model, k.alphaAS, n)
	k.prepared = false
}

// prepareTerm folds the ab and wa buckets for term into one table:
// weight[t] = alphak[t] * (n_tw + beta) / (n_t + beta*V).
func (k *WordByWordKernel) prepareTerm(term TermId) {
	k.post.RefreshTerm(k.model, term)
	for t := 0; t < k.model.NumTopics(); t++ {
		k.weights[t] = k.post.Alphaks[t] * k.post.TermBetaDenoms[t]
	}
	k.accel.Reset(k.model.NumTopics())
	k.accel.SetDist(k.weights)
	k.curTerm = term
	k.prepared = true
}

// SampleOccurrence resamples one occurrence of term in doc. The doc
// bucket subtracts the token's own doc-side contribution exactly; the
// term/global-side contribution is handled by rejection when a draw
// lands on the current topic.
func (k *WordByWordKernel) SampleOccurrence(doc *Document, term TermId, pos int, rng *rand.Rand) {
	if k.skipVirtual && term.IsVirtual() {
		return
	}
	if !k.prepared || term != k.curTerm {
		k.prepareTerm(term)
	}

	oldTopic := int(doc.Topics[pos])

	// dwb bucket over the document's active topics, with the current
	// token removed from its own topic's doc count.
	var dwbNorm float64
	for i := 0; i < doc.TopicCounts.Len(); i++ {
		t := int(doc.TopicCounts.Topics[i])
		c := int64(doc.TopicCounts.Counts[i])
		if t == oldTopic {
			c--
		}
		dwbNorm += float64(c) * k.post.TermBetaDenoms[t]
	}

	total := k.accel.Norm() + dwbNorm
	var newTopic int
	for {
		u := rng.Float64() * total
		if u < dwbNorm {
			newTopic = oldTopic // fallthrough value for float residue
			for i := 0; i < doc.TopicCounts.Len(); i++ {
				t := int(doc.TopicCounts.Topics[i])
				c := int64(doc.TopicCounts.Counts[i])
				if t == oldTopic {
					c--
				}
				u -= float64(c) * k.post.TermBetaDenoms[t]
				if u <= 0 {
					newTopic = t
					break
				}
			}
		} else {
			newTopic = k.accel.SampleFrom(u - dwbNorm)
		}
		if newTopic != oldTopic {
			break
		}
		// The table was built from unadjusted term/global counts, so
		// the current topic carries excess mass; keep the draw only
		// with probability adjusted/built.
		docAdj := doc.TopicCounts.At(oldTopic) - 1
		built := k.post.TokenMass(docAdj, oldTopic)
		adjusted := k.post.AdjustedTokenMass(k.model, term,
			doc.TopicCounts.At(oldTopic), oldTopic, k.alphaAS, k.numTokens)
		if built <= 0 || rng.Float64() < adjusted/built {
			break
		}
	}

	if newTopic != oldTopic {
		doc.Topics[pos] = int32(newTopic)
		doc.TopicCounts.Dec(oldTopic, 1)
		doc.TopicCounts.Inc(newTopic, 1)
		if k.diff != nil {
			k.diff.TermCounts(term).Dec(oldTopic, 1)
			k.diff.GlobalTopicCounts.Dec(oldTopic, 1)
			k.diff.TermCounts(term).Inc(newTopic, 1)
			k.diff.GlobalTopicCounts.Inc(newTopic, 1)
		}
	}
}

// SampleTermGroup resamples every occurrence of term across the given
// documents, at the positions recorded in positions (parallel to
// docs): this is the word-by-word iteration order, the kernel's
// namesake. The proposal table is built once for the whole group.
func (k *WordByWordKernel) SampleTermGroup(term TermId, docs []*Document, positions []int, rng *rand.Rand) {
	if k.skipVirtual && term.IsVirtual() {
		return
	}
	k.prepareTerm(term)
	for i, doc := range docs {
		k.SampleOccurrence(doc, term, positions[i], rng)
	}
}
