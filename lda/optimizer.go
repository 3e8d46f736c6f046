package lda

import "github.com/wangkuiyi/vertexlda/counts"

// Optimizer collects per-iteration document statistics for
// re-estimating the asymmetric topic prior (the AlphaAS mode).
type Optimizer struct {
	// docLenHist is the histogram of document lengths across the
	// corpus, keyed by length.
	docLenHist counts.Sparse

	// topicDocHists[k] is the histogram of how many documents saw
	// topic k occur n times, keyed by n.
	topicDocHists []counts.Sparse
}

func NewOptimizer(numTopics int) *Optimizer {
	o := &Optimizer{
		docLenHist:    counts.NewSparse(),
		topicDocHists: make([]counts.Sparse, numTopics),
	}
	for i := range o.topicDocHists {
		o.topicDocHists[i] = counts.NewSparse()
	}
	return o
}

// CollectDocumentStatistics folds one document's final topic
// assignment into the running histograms; called once per document
// per Gibbs sweep, between resampling and OptimizeTopicPriors.
func (o *Optimizer) CollectDocumentStatistics(d *Document) {
	d.TopicCounts.ForEach(func(topic int, count int64) error {
		o.topicDocHists[topic].Inc(int(count), 1)
		return nil
	})
	o.docLenHist.Inc(d.Len(), 1)
}

// approximateHist turns a sparse length/count histogram into a dense
// slice indexed by length, the form the digamma recurrence below
// walks. Only used inside OptimizeTopicPriors.
func approximateHist(s counts.Sparse) []int64 {
	if len(s) == 0 {
		return nil
	}
	maxIdx := 0
	for k := range s {
		if int(k) > maxIdx {
			maxIdx = int(k)
		}
	}
	d := make([]int64, maxIdx+1)
	s.ForEach(func(k int, v int64) error {
		d[k] += v
		return nil
	})
	return d
}

// OptimizeTopicPriors re-estimates m.Alpha (and AlphaSum) via Minka's
// fixed-point iteration over the digamma recurrence relation, per
// Hanna M. Wallach, Structured Topic Models for Language, Ph.D.
// thesis, University of Cambridge, 2008.
func (o *Optimizer) OptimizeTopicPriors(m *Model, shape, scale float64, iterations int) {
	for it := 0; it < iterations; it++ {
		diffDigamma, denominator := 0.0, 0.0
		d := approximateHist(o.docLenHist)
		for i := 1; i < len(d); i++ {
			diffDigamma += 1.0 / (float64(i) - 1.0 + m.AlphaSum)
			denominator += float64(d[i]) * diffDigamma
		}
		denominator -= 1.0 / scale

		m.AlphaSum = 0.0
		for k, h := range o.topicDocHists {
			diffDigamma, numerator := 0.0, 0.0
			d := approximateHist(h)
			for i := 1; i < len(d); i++ {
				diffDigamma += 1.0 / (float64(i) - 1.0 + m.Alpha[k])
				numerator += float64(d[i]) * diffDigamma
			}
			m.Alpha[k] = (m.Alpha[k]*numerator + shape) / denominator
			m.AlphaSum += m.Alpha[k]
		}
	}
}
