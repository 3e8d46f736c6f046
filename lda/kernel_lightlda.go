package lda

import (
	"math/rand"

	"github.com/wangkuiyi/vertexlda/dist"
)

// LightLDAKernel implements the Metropolis-Hastings kernel: rather
// than computing the exact posterior, it alternates a cheap
// doc-proposal and word-proposal and accepts or rejects the proposed
// topic against the true posterior ratio. The word proposal is drawn
// from a table rebuilt once per term (and, with a small probability,
// on any token); the doc proposal is drawn by a scan over the
// document's active topics and has no cached table. Acceptance only
// needs the posterior mass at the proposed and current topics, so no
// step computes the full posterior.
type LightLDAKernel struct {
	model *Model
	diff  *Model

	wordProposal dist.Discrete // q_w(k) ∝ n_kw + beta, rebuilt per term
	mhSteps      int

	curTerm  TermId
	prepared bool
}

// DefaultMHSteps is the number of alternating doc/word proposal
// sub-steps per token.
const DefaultMHSteps = 8

// wordProposalRefresh is the per-token probability of rebuilding the
// word-proposal table even when the term has not changed, bounding
// how stale the table can get while the kernel mutates n_kw in place
// underneath it. Staleness trades accuracy for throughput: the MH
// ratio evaluates the word-proposal mass against live counts, while
// the draw comes from the table as it was last rebuilt.
const wordProposalRefresh = 1e-4

func NewLightLDAKernel(m *Model, wordProposal dist.Discrete, mhSteps int) *LightLDAKernel {
	if mhSteps <= 0 {
		mhSteps = DefaultMHSteps
	}
	return &LightLDAKernel{model: m, wordProposal: wordProposal, mhSteps: mhSteps}
}

func (k *LightLDAKernel) SetDiff(d *Model) { k.diff = d }
func (k *LightLDAKernel) GetDiff() *Model  { return k.diff }

// prepareWordProposal rebuilds q_w(.|term) = n_{k,term} + beta over
// all K topics. It is the amortized-across-many-tokens table: callers
// should rebuild it once per term group, not once per token.
func (k *LightLDAKernel) prepareWordProposal(term TermId) {
	m := k.model
	weights := make([]float64, m.NumTopics())
	for t := range weights {
		weights[t] = m.Beta
	}
	m.TermCounts(term).ForEach(func(t int, c int64) error {
		weights[t] += float64(c)
		return nil
	})
	k.wordProposal.Reset(m.NumTopics())
	k.wordProposal.SetDist(weights)
	k.curTerm = term
	k.prepared = true
}

// sampleDocProposal draws from q_d(.|doc) ∝ n_{d,k} + alpha_k, the
// law docProposalMass gives: a linear scan over the document's
// (sparse) active topics for the count part, then a walk over alpha
// for the prior part -- cheap because documents are typically far
// sparser than terms.
func (k *LightLDAKernel) sampleDocProposal(doc *Document, rng *rand.Rand) int {
	m := k.model
	norm := m.AlphaSum
	for i := 0; i < doc.TopicCounts.Len(); i++ {
		norm += float64(doc.TopicCounts.Counts[i])
	}
	draw := rng.Float64() * norm
	for i := 0; i < doc.TopicCounts.Len(); i++ {
		draw -= float64(doc.TopicCounts.Counts[i])
		if draw <= 0 {
			return int(doc.TopicCounts.Topics[i])
		}
	}
	for t, a := range m.Alpha {
		draw -= a
		if draw <= 0 {
			return t
		}
	}
	return m.NumTopics() - 1
}

func (k *LightLDAKernel) docProposalMass(doc *Document, topic int) float64 {
	return float64(doc.TopicCounts.At(topic)) + k.model.Alpha[topic]
}

func (k *LightLDAKernel) wordProposalMass(term TermId, topic int) float64 {
	return float64(k.model.TermCounts(term).At(topic)) + k.model.Beta
}

// trueMass computes the unnormalized collapsed posterior mass of
// topic, used only as a ratio between two topics so the shared
// normalizer need not be computed.
func (k *LightLDAKernel) trueMass(doc *Document, term TermId, topic int) float64 {
	m := k.model
	nkt := float64(m.TermCounts(term).At(topic))
	nk := float64(m.GlobalTopicCounts.At(topic))
	ndk := float64(doc.TopicCounts.At(topic))
	return (ndk + m.Alpha[topic]) * (nkt + m.Beta) / (nk + m.BetaSum)
}

// mhStep runs one Metropolis-Hastings sub-step: propose from
// proposalMass/sampleProposal, accept with probability
// min(1, (trueMass(new)*proposalMass(old)) / (trueMass(old)*proposalMass(new))).
func (k *LightLDAKernel) mhStep(doc *Document, term TermId, current int,
	sampleProposal func(*rand.Rand) int, proposalMass func(int) float64, rng *rand.Rand) int {

	proposed := sampleProposal(rng)
	if proposed == current {
		return current
	}
	pNew := k.trueMass(doc, term, proposed)
	pOld := k.trueMass(doc, term, current)
	qNewGivenOld := proposalMass(proposed)
	qOldGivenNew := proposalMass(current)
	if pOld <= 0 || qNewGivenOld <= 0 {
		return current
	}
	ratio := (pNew * qOldGivenNew) / (pOld * qNewGivenOld)
	if ratio >= 1 || rng.Float64() < ratio {
		return proposed
	}
	return current
}

// SampleOccurrence runs mhSteps alternating doc-proposal/word-proposal
// MH sub-steps on one occurrence, then commits the final topic.
func (k *LightLDAKernel) SampleOccurrence(doc *Document, term TermId, pos int, rng *rand.Rand) {
	if !k.prepared || term != k.curTerm || rng.Float64() < wordProposalRefresh {
		k.prepareWordProposal(term)
	}
	oldTopic := int(doc.Topics[pos])
	k.neglect(doc, term, oldTopic)

	topic := oldTopic
	for i := 0; i < k.mhSteps; i += 2 {
		topic = k.mhStep(doc, term, topic, func(r *rand.Rand) int {
			return k.sampleDocProposal(doc, r)
		}, func(t int) float64 {
			return k.docProposalMass(doc, t)
		}, rng)
		if i+1 >= k.mhSteps {
			break
		}

		topic = k.mhStep(doc, term, topic, func(r *rand.Rand) int {
			return k.wordProposal.SampleFrom(r.Float64() * k.wordProposal.Norm())
		}, func(t int) float64 {
			return k.wordProposalMass(term, t)
		}, rng)
	}

	doc.Topics[pos] = int32(topic)
	k.consider(doc, term, topic)
}

func (k *LightLDAKernel) neglect(doc *Document, term TermId, topic int) {
	k.model.TermCounts(term).Dec(topic, 1)
	k.model.GlobalTopicCounts.Dec(topic, 1)
	doc.TopicCounts.Dec(topic, 1)
	if k.diff != nil {
		k.diff.TermCounts(term).Dec(topic, 1)
		k.diff.GlobalTopicCounts.Dec(topic, 1)
	}
}

func (k *LightLDAKernel) consider(doc *Document, term TermId, topic int) {
	k.model.TermCounts(term).Inc(topic, 1)
	k.model.GlobalTopicCounts.Inc(topic, 1)
	doc.TopicCounts.Inc(topic, 1)
	if k.diff != nil {
		k.diff.TermCounts(term).Inc(topic, 1)
		k.diff.GlobalTopicCounts.Inc(topic, 1)
	}
}

// SampleTermGroup rebuilds the word proposal once for term, then runs
// every occurrence of term across docs through it.
func (k *LightLDAKernel) SampleTermGroup(term TermId, docs []*Document, positions []int, rng *rand.Rand) {
	k.prepareWordProposal(term)
	for i, doc := range docs {
		k.SampleOccurrence(doc, term, positions[i], rng)
	}
}
