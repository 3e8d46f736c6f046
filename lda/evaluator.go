package lda

import "math"

// Evaluator computes held-out perplexity: for each document, the
// average per-token log-likelihood under the trained model. It
// precomputes, per term, o(t) = sum_k phi_kt * alpha_k so that
// Perplexity only has to walk a document's (sparse) topic counts
// instead of the full K-vector for the smoothing contribution.
type Evaluator struct {
	model       *Accessor
	cachedCoeff []float64
}

func NewEvaluator(m *Model, cacheSizeMB int) *Evaluator {
	a := NewAccessor(m, cacheSizeMB)
	return &Evaluator{model: a, cachedCoeff: evaluationCoeff(a)}
}

// evaluationCoeff precomputes, for every term t,
//
//	o(t) = sum_k phi_kt * alpha_k
//	     = s + sum_k (alpha_k * n_kt) / (beta*V + n_k)
//
// where s = sum_k alpha_k*beta/(beta*V + n_k) is the same
// smoothing-only mass every SparseLDA kernel already tracks, letting
// the second sum run in O(#non-zero topics for t) instead of O(K).
func evaluationCoeff(a *Accessor) []float64 {
	var smoothingOnly float64
	for t := 0; t < a.NumTopics(); t++ {
		smoothingOnly += a.Alpha[t] * a.Beta /
			(a.BetaSum + float64(a.GlobalTopicCounts.At(t)))
	}

	coeff := make([]float64, len(a.TermTopicCounts))
	for term, c := range a.TermTopicCounts {
		coeff[term] = smoothingOnly
		if c == nil {
			continue
		}
		c.ForEach(func(topic int, count int64) error {
			coeff[term] += a.Alpha[topic] * float64(count) /
				(a.BetaSum + float64(a.GlobalTopicCounts.At(topic)))
			return nil
		})
	}
	return coeff
}

// Perplexity returns a document's log-likelihood and length; summing
// log-likelihoods and lengths across a corpus and computing
// exp(-sum(logl)/sum(len)) gives the corpus perplexity.
func (e *Evaluator) Perplexity(doc *Document) (float64, int) {
	if doc.Len() <= 0 {
		return 0, 0
	}
	var logl float64
	dists := make(map[TermId][]float64, doc.Len())
	for i := 0; i < doc.Len(); i++ {
		term := doc.Terms[i]
		dist, ok := dists[term]
		if !ok {
			dist = e.model.TermDist(term)
			dists[term] = dist
		}
		var prob float64
		doc.TopicCounts.ForEach(func(topic int, count int64) error {
			prob += dist[topic] * float64(count)
			return nil
		})
		logl += math.Log((e.cachedCoeff[term.Real()] + prob) /
			(float64(doc.Len()) + e.model.AlphaSum))
	}
	return logl, doc.Len()
}

// CorpusPerplexity aggregates log-likelihood and length across every
// document in corpus and returns exp(-logl/n), the standard held-out
// perplexity definition.
func CorpusPerplexity(e *Evaluator, corpus []*Document) float64 {
	var logl float64
	var n int
	for _, d := range corpus {
		l, tokens := e.Perplexity(d)
		logl += l
		n += tokens
	}
	if n == 0 {
		return 0
	}
	return math.Exp(-logl / float64(n))
}
