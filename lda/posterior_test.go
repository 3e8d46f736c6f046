package lda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The three-bucket split must reproduce the full conditional exactly:
// for every topic, ab + wa + dwb equals
// (n_dk + alphak) * (n_kw + beta) / (n_k + beta*V).
func TestPosteriorDecompositionIsExact(t *testing.T) {
	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	term := NewTermId(1)
	m.TermCounts(term).Inc(0, 3)
	m.TermCounts(term).Inc(1, 1)
	m.GlobalTopicCounts.Inc(0, 5)
	m.GlobalTopicCounts.Inc(1, 2)

	const alphaAS = 0.1
	const numTokens = 7
	docCounts := []int64{2, 1}

	p := NewPosterior(testingK)
	p.Refresh(m, alphaAS, numTokens)
	p.RefreshTerm(m, term)

	alphaRatio := m.AlphaSum / (numTokens + alphaAS*float64(testingK))
	for topic := 0; topic < testingK; topic++ {
		nk := float64(m.GlobalTopicCounts.At(topic))
		nkw := float64(m.TermCounts(term).At(topic))
		alphak := alphaRatio * (nk + alphaAS)
		want := (float64(docCounts[topic]) + alphak) * (nkw + m.Beta) / (nk + m.BetaSum)

		ab := alphak * m.Beta * p.Denoms[topic]
		wa := alphak * nkw * p.Denoms[topic]
		dwb := float64(docCounts[topic]) * p.TermBetaDenoms[topic]

		assert.InDelta(t, want, ab+wa+dwb, 1e-12, "bucket sum for topic %d", topic)
		assert.InDelta(t, want, p.TokenMass(docCounts[topic], topic), 1e-12,
			"TokenMass for topic %d", topic)
	}
}

// TermBetaDenoms must equal BetaDenoms plus the term's counts scaled
// by Denoms, and revert to BetaDenoms on topics the term never saw.
func TestPosteriorRefreshTerm(t *testing.T) {
	m := NewModel(testingK, testingV, testingAlpha, testingBeta)
	term := NewTermId(0)
	m.TermCounts(term).Inc(1, 4)
	m.GlobalTopicCounts.Inc(1, 4)

	p := NewPosterior(testingK)
	p.Refresh(m, 0.1, 4)
	p.RefreshTerm(m, term)

	assert.Equal(t, p.BetaDenoms[0], p.TermBetaDenoms[0],
		"topic 0 is untouched by the term")
	assert.InDelta(t, p.BetaDenoms[1]+4*p.Denoms[1], p.TermBetaDenoms[1], 1e-15)
}
