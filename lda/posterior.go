package lda

// Posterior holds the precomputed denominator vectors shared by every
// token of the same term under the word-by-word decomposition. For a
// token of term w in document d currently assigned topic k, the
// collapsed conditional factors as
//
//	(n_dk + alphak[k]) * (n_kw + beta) / (n_k + beta*V)
//
// where alphak[k] = alphaRatio * (n_k + alphaAS) is the
// asymmetric-prior per-topic document concentration, with
// alphaRatio = (sum_k alpha_k) / (N_tokens + K*alphaAS). The product
// splits into three non-negative terms by which of (k, w, d) carry
// sparse counts:
//
//	ab[k]  = alphak[k] * beta  * Denoms[k]       dense over all K
//	wa[k]  = alphak[k] * n_kw  * Denoms[k]       sparse over w's topics
//	dwb[k] = n_dk * (n_kw + beta) * Denoms[k]    sparse over d's topics
//
// so the kernel only ever walks a sparse support for the last two and
// pays O(K) once per refresh for the first.
type Posterior struct {
	Denoms       []float64 // 1 / (n_k + beta*V)
	AlphaKDenoms []float64 // alphak[k] * Denoms[k]
	BetaDenoms   []float64 // beta * Denoms[k]
	Alphaks      []float64 // alphaRatio * (n_k + alphaAS)

	// TermBetaDenoms is (n_kw + beta) * Denoms[k] for the term most
	// recently passed to RefreshTerm; it equals BetaDenoms except on
	// that term's active topics.
	TermBetaDenoms []float64

	abNorm float64 // sum over k of ab[k], maintained by Refresh
}

func NewPosterior(numTopics int) *Posterior {
	return &Posterior{
		Denoms:         make([]float64, numTopics),
		AlphaKDenoms:   make([]float64, numTopics),
		BetaDenoms:     make([]float64, numTopics),
		Alphaks:        make([]float64, numTopics),
		TermBetaDenoms: make([]float64, numTopics),
	}
}

// Refresh recomputes every global vector from the model's current
// counters. numTokens is the corpus token total (the sum of the global
// topic counts); callers refresh once per iteration, after the
// counter-update phase rebuilt GlobalTopicCounts, never per token.
func (p *Posterior) Refresh(m *Model, alphaAS float64, numTokens int64) {
	k := m.NumTopics()
	alphaRatio := m.AlphaSum / (float64(numTokens) + alphaAS*float64(k))
	p.abNorm = 0
	for t := 0; t < k; t++ {
		nk := float64(m.GlobalTopicCounts.At(t))
		p.Denoms[t] = 1 / (nk + m.BetaSum)
		p.Alphaks[t] = alphaRatio * (nk + alphaAS)
		p.AlphaKDenoms[t] = p.Alphaks[t] * p.Denoms[t]
		p.BetaDenoms[t] = m.Beta * p.Denoms[t]
		p.abNorm += p.Alphaks[t] * m.Beta * p.Denoms[t]
	}
}

// RefreshTerm overlays term's active topics onto BetaDenoms, giving
// (n_kw + beta) * Denoms[k]. Called once per source group.
func (p *Posterior) RefreshTerm(m *Model, term TermId) {
	copy(p.TermBetaDenoms, p.BetaDenoms)
	m.TermCounts(term).ForEach(func(t int, c int64) error {
		p.TermBetaDenoms[t] += float64(c) * p.Denoms[t]
		return nil
	})
}

// ABNorm returns the total mass of the dense ab bucket under the
// vectors computed by the last Refresh.
func (p *Posterior) ABNorm() float64 { return p.abNorm }

// TokenMass returns the full unnormalized conditional mass of topic t
// for the current term (as loaded by RefreshTerm) in a document with
// n_dk = docCount at t. Used by the exact rejection correction: the
// caller compares the mass the proposal table was built from against
// the mass with the current token's own contribution removed.
func (p *Posterior) TokenMass(docCount int64, t int) float64 {
	return (float64(docCount) + p.Alphaks[t]) * p.TermBetaDenoms[t]
}

// AdjustedTokenMass is TokenMass with the token's own contribution
// subtracted: n_dk, n_kw, and n_k each drop by one, which perturbs
// every factor including the denominator, so it is recomputed from the
// model's raw counters rather than the cached vectors.
func (p *Posterior) AdjustedTokenMass(m *Model, term TermId, docCount int64, t int, alphaAS float64, numTokens int64) float64 {
	k := m.NumTopics()
	alphaRatio := m.AlphaSum / (float64(numTokens) - 1 + alphaAS*float64(k))
	nk := float64(m.GlobalTopicCounts.At(t)) - 1
	nkw := float64(m.TermCounts(term).At(t)) - 1
	if nk < 0 || nkw < 0 {
		return 0
	}
	alphak := alphaRatio * (nk + alphaAS)
	return (float64(docCount-1) + alphak) * (nkw + m.Beta) / (nk + m.BetaSum)
}
