package lda

import (
	"errors"
	"log"
	"math/rand"
)

// SparseLDAKernel implements the doc-by-doc SparseLDA sampling
// algorithm of Yao, Mimno & McCallum, "Topic Model Inference on
// Streaming Document Collections" (KDD 2009): the posterior for each
// token decomposes into three additive buckets:
//
//	smoothing-only:  alpha_k * beta / (beta*V + n_k)        (dense, all K)
//	document-topic:  n_{d,k} * beta / (beta*V + n_k)         (sparse, doc's topics)
//	topic-word:      (alpha_k + n_{d,k}) * n_{k,w} / (beta*V + n_k)  (sparse, word's topics)
//
// letting the kernel walk only the non-zero entries of the last two
// buckets and fall back to the dense smoothing bucket only when a
// draw lands there, which is rare once a document/term has
// accumulated enough mass. Supports an asymmetric per-topic alpha.
type SparseLDAKernel struct {
	model *Model
	diff  *Model // when non-nil, every mutation is mirrored here too

	smoothingOnlySize    float64
	smoothingOnlyFactors []float64
	docTopicSize         float64
	docTopicFactors      []float64
	topicWordSize        float64
	topicWordFactors     []float64
	coefficients         []float64
}

func NewSparseLDAKernel(m *Model) *SparseLDAKernel {
	k := &SparseLDAKernel{
		model:                m,
		smoothingOnlyFactors: make([]float64, m.NumTopics()),
		docTopicFactors:      make([]float64, m.NumTopics()),
		topicWordFactors:     make([]float64, m.NumTopics()),
		coefficients:         make([]float64, m.NumTopics()),
	}
	k.buildSmoothingOnlyBucket()
	k.cacheCoefficients()
	return k
}

// SetDiff directs subsequent Sample calls to also accumulate their
// counter deltas into d, the mechanism a distributed worker uses to
// ship a partial update back for aggregation instead of mutating the
// authoritative model directly.
func (k *SparseLDAKernel) SetDiff(d *Model) { k.diff = d }
func (k *SparseLDAKernel) GetDiff() *Model  { return k.diff }

// RefreshPriors recomputes the smoothing-only bucket and the
// per-topic coefficients from the model's current Alpha/Beta, for
// callers that mutate the model's priors between sampling passes (an
// Optimizer's OptimizeTopicPriors, in the AlphaAS mode) and need the
// kernel's caches to reflect the new values before the next Sample.
func (k *SparseLDAKernel) RefreshPriors() {
	k.buildSmoothingOnlyBucket()
	k.cacheCoefficients()
}

func (k *SparseLDAKernel) buildSmoothingOnlyBucket() {
	k.smoothingOnlySize = 0
	for t := 0; t < k.model.NumTopics(); t++ {
		k.smoothingOnlyFactors[t] = k.model.Alpha[t] * k.model.Beta /
			(k.model.BetaSum + float64(k.model.GlobalTopicCounts.At(t)))
		k.smoothingOnlySize += k.smoothingOnlyFactors[t]
	}
}

func (k *SparseLDAKernel) buildDocTopicBucket(doc *Document) {
	k.docTopicSize = 0
	for t := range k.docTopicFactors {
		k.docTopicFactors[t] = 0
	}
	for i := 0; i < doc.TopicCounts.Len(); i++ {
		t := int(doc.TopicCounts.Topics[i])
		k.docTopicFactors[t] = k.model.Beta * float64(doc.TopicCounts.Counts[i]) /
			(k.model.BetaSum + float64(k.model.GlobalTopicCounts.At(t)))
		k.docTopicSize += k.docTopicFactors[t]
	}
}

// buildTopicWordBucket assumes cacheCoefficients/updateCoefficients
// already populated k.coefficients for the current document.
func (k *SparseLDAKernel) buildTopicWordBucket(term TermId) {
	k.topicWordSize = 0
	for t := range k.topicWordFactors {
		k.topicWordFactors[t] = 0
	}
	k.model.TermCounts(term).ForEach(func(t int, c int64) error {
		k.topicWordFactors[t] = k.coefficients[t] * float64(c)
		k.topicWordSize += k.topicWordFactors[t]
		return nil
	})
}

func (k *SparseLDAKernel) cacheCoefficients() {
	for t := 0; t < k.model.NumTopics(); t++ {
		k.coefficients[t] = k.model.Alpha[t] /
			(k.model.BetaSum + float64(k.model.GlobalTopicCounts.At(t)))
	}
}

func (k *SparseLDAKernel) updateCoefficients(doc *Document) {
	for i := 0; i < doc.TopicCounts.Len(); i++ {
		t := int(doc.TopicCounts.Topics[i])
		k.coefficients[t] = (k.model.Alpha[t] + float64(doc.TopicCounts.Counts[i])) /
			(k.model.BetaSum + float64(k.model.GlobalTopicCounts.At(t)))
	}
}

func (k *SparseLDAKernel) resetCoefficients(doc *Document) {
	for i := 0; i < doc.TopicCounts.Len(); i++ {
		t := int(doc.TopicCounts.Topics[i])
		k.coefficients[t] = k.model.Alpha[t] /
			(k.model.BetaSum + float64(k.model.GlobalTopicCounts.At(t)))
	}
}

func (k *SparseLDAKernel) neglectOrConsider(doc *Document, term TermId, topic int32, neglect bool) {
	t := int(topic)
	if neglect {
		k.model.TermCounts(term).Dec(t, 1)
		k.model.GlobalTopicCounts.Dec(t, 1)
		doc.TopicCounts.Dec(t, 1)
		if k.diff != nil {
			k.diff.TermCounts(term).Dec(t, 1)
			k.diff.GlobalTopicCounts.Dec(t, 1)
		}
	} else {
		k.model.TermCounts(term).Inc(t, 1)
		k.model.GlobalTopicCounts.Inc(t, 1)
		doc.TopicCounts.Inc(t, 1)
		if k.diff != nil {
			k.diff.TermCounts(term).Inc(t, 1)
			k.diff.GlobalTopicCounts.Inc(t, 1)
		}
	}

	k.smoothingOnlySize -= k.smoothingOnlyFactors[topic]
	k.docTopicSize -= k.docTopicFactors[topic]

	docTopicCount := float64(doc.TopicCounts.At(t))
	globalTopicCount := float64(k.model.GlobalTopicCounts.At(t))

	k.smoothingOnlyFactors[topic] = k.model.Alpha[topic] * k.model.Beta /
		(k.model.BetaSum + globalTopicCount)
	k.docTopicFactors[topic] = docTopicCount * k.model.Beta /
		(k.model.BetaSum + globalTopicCount)

	k.smoothingOnlySize += k.smoothingOnlyFactors[topic]
	k.docTopicSize += k.docTopicFactors[topic]

	k.coefficients[topic] = (k.model.Alpha[topic] + docTopicCount) /
		(k.model.BetaSum + globalTopicCount)
}

func (k *SparseLDAKernel) sampleNewTopic(doc *Document, term TermId, rng *rand.Rand) int32 {
	norm := k.smoothingOnlySize + k.docTopicSize + k.topicWordSize
	draw := rng.Float64() * norm
	var newTopic int32 = -1

	if draw < k.topicWordSize {
		k.model.TermCounts(term).ForEach(func(topic int, _ int64) error {
			draw -= k.topicWordFactors[topic]
			if draw <= 0 {
				newTopic = int32(topic)
				return errors.New("break")
			}
			return nil
		})
	} else {
		draw -= k.topicWordSize
		if draw < k.docTopicSize {
			for i := 0; i < doc.TopicCounts.Len(); i++ {
				topic := doc.TopicCounts.Topics[i]
				draw -= k.docTopicFactors[topic]
				if draw <= 0 {
					newTopic = topic
					break
				}
			}
		} else {
			draw -= k.docTopicSize
			var i int32
			draw -= k.smoothingOnlyFactors[i]
			for draw > 0 {
				i++
				draw -= k.smoothingOnlyFactors[i]
			}
			newTopic = i
		}
	}

	if newTopic < 0 || int(newTopic) >= k.model.NumTopics() {
		log.Fatalf("sampling failed: newTopic = %d out of range [0, %d)",
			newTopic, k.model.NumTopics())
	}
	return newTopic
}

// Sample resamples every token in doc in place, one token at a time:
// neglect (remove the token's current assignment from every counter),
// rebuild the topic-word bucket for its term, draw a new topic, then
// consider (add the new assignment back in).
func (k *SparseLDAKernel) Sample(doc *Document, rng *rand.Rand) {
	k.buildDocTopicBucket(doc)
	k.updateCoefficients(doc)
	for i := 0; i < doc.Len(); i++ {
		term := doc.Terms[i]
		oldTopic := doc.Topics[i]
		k.neglectOrConsider(doc, term, oldTopic, true)
		k.buildTopicWordBucket(term)
		newTopic := k.sampleNewTopic(doc, term, rng)
		doc.Topics[i] = newTopic
		k.neglectOrConsider(doc, term, newTopic, false)
	}
	k.resetCoefficients(doc)
}
