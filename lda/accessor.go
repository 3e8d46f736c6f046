package lda

import (
	"container/heap"
	"unsafe"
)

// Accessor is a read-mostly, memory-bounded view of a Model's
// term-topic posteriors, used by the evaluator and by the
// interpreter. It precomputes and caches full K-vector
// topic distributions for the highest-frequency terms up to a memory
// budget, and falls back to computing a distribution on demand for
// everything else, rather than materializing all V*K floats at once.
type Accessor struct {
	*Model
	dists         [][]float64
	smoothingOnly []float64
}

// NewAccessor builds an Accessor over m, caching full distributions
// for as many of the highest-frequency terms as fit in cacheSizeMB.
// A negative cacheSizeMB caches every term.
func NewAccessor(m *Model, cacheSizeMB int) *Accessor {
	a := &Accessor{Model: m, dists: make([][]float64, m.VocabSize())}

	cached := m.VocabSize()
	if cacheSizeMB >= 0 {
		var f64 float64
		cached = (cacheSizeMB*1024*1024 -
			m.VocabSize()*int(unsafe.Sizeof(a.dists[0]))) /
			(m.NumTopics() * int(unsafe.Sizeof(f64)))
	}
	if cached <= 0 {
		return a
	}

	h := newTermFreqHeap(m.VocabSize())
	heap.Init(h)
	for term, c := range m.TermTopicCounts {
		var freq int64
		if c != nil {
			c.ForEach(func(_ int, count int64) error {
				freq += count
				return nil
			})
		}
		if h.Len() < cached {
			heap.Push(h, termFreq{term, freq})
		} else if freq > (*h)[0].freq {
			heap.Pop(h)
			heap.Push(h, termFreq{term, freq})
		}
	}

	for h.Len() > 0 {
		tf := heap.Pop(h).(termFreq)
		dist := a.buildSmoothingOnly()
		a.cumulatePosterior(dist, TermId(tf.term))
		a.dists[tf.term] = dist
	}
	return a
}

func (a *Accessor) buildSmoothingOnly() []float64 {
	if len(a.smoothingOnly) == 0 {
		dist := make([]float64, a.NumTopics())
		a.GlobalTopicCounts.ForEach(func(topic int, count int64) error {
			dist[topic] = a.Beta / (a.BetaSum + float64(count))
			return nil
		})
		a.smoothingOnly = dist
	}
	dist := make([]float64, a.NumTopics())
	copy(dist, a.smoothingOnly)
	return dist
}

func (a *Accessor) cumulatePosterior(dist []float64, term TermId) {
	c := a.TermTopicCounts[term.Real()]
	if c == nil {
		return
	}
	c.ForEach(func(t int, cnt int64) error {
		dist[t] = (float64(cnt) + a.Beta) / (a.BetaSum + float64(a.GlobalTopicCounts.At(t)))
		return nil
	})
}

// TermDist returns the full K-vector topic distribution for term,
// from cache if present, computed fresh otherwise.
func (a *Accessor) TermDist(term TermId) []float64 {
	if d := a.dists[term.Real()]; d != nil {
		return d
	}
	dist := a.buildSmoothingOnly()
	a.cumulatePosterior(dist, term)
	return dist
}

type termFreq struct {
	term int
	freq int64
}

type termFreqHeap []termFreq

func newTermFreqHeap(capacity int) *termFreqHeap {
	h := make(termFreqHeap, 0, capacity)
	return &h
}

func (h termFreqHeap) Len() int            { return len(h) }
func (h termFreqHeap) Less(i, j int) bool  { return h[i].freq < h[j].freq }
func (h termFreqHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *termFreqHeap) Push(x interface{}) { *h = append(*h, x.(termFreq)) }
func (h *termFreqHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
