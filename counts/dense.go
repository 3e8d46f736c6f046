package counts

import (
	"encoding/gob"
	"fmt"
	"math"
)

// Dense is a plain count array, indexed by topic. Used for the global
// topic counter n_k, and for any per-vertex counter promoted out of
// Sparse once its active size crosses PromotionThreshold.
type Dense []int64

func init() {
	gob.Register(Dense{})
}

func NewDense(k int) Dense {
	return make(Dense, k)
}

func (d Dense) At(topic int) int64 {
	return d[topic]
}

func (d Dense) Inc(topic, delta int) {
	if delta < 0 {
		panic(fmt.Sprintf("delta (%d) is negative", delta))
	}
	if d[topic] >= math.MaxInt64-int64(delta) {
		panic(fmt.Sprintf("d[%d] = %d overflow", topic, d[topic]))
	}
	d[topic] += int64(delta)
}

func (d Dense) Dec(topic, delta int) {
	if delta < 0 {
		panic(fmt.Sprintf("delta (%d) is negative", delta))
	}
	d[topic] -= int64(delta)
}

// Len returns the number of topic slots (K), not the active count: a
// Dense vector is, by construction, already materialized over every
// topic. Used by callers that need K back out of the global counter
// (e.g. Model.NumTopics).
func (d Dense) Len() int {
	return len(d)
}

func (d Dense) ForEach(p func(topic int, count int64) error) error {
	for i, v := range d {
		if v == 0 {
			continue
		}
		if e := p(i, v); e != nil {
			return e
		}
	}
	return nil
}

func (d Dense) Clone() TC {
	n := NewDense(len(d))
	copy(n, d)
	return n
}

// Add accumulates o into d in place, topic by topic. Used both for
// the global counter and for dense-vs-dense vertex counter merges.
func (d Dense) Add(o Dense) {
	for i, v := range o {
		d[i] += v
	}
}
