package dist

import "sort"

// CumulativeDist samples by binary search over a prefix-sum array.
// O(K) build, O(log K) sample, no update support. FlatDist builds on
// it. The doc-by-doc SparseLDA kernel does not use it: it walks its
// buckets linearly in SparseLDAKernel.sampleNewTopic.
type CumulativeDist struct {
	k    int
	norm float64
	cum  []float64 // cum[i] = sum(weights[0..i])
}

func NewCumulativeDist() *CumulativeDist {
	return &CumulativeDist{}
}

func (c *CumulativeDist) Reset(k int) {
	c.k = k
	c.norm = 0
	if cap(c.cum) < k {
		c.cum = make([]float64, k)
	} else {
		c.cum = c.cum[:k]
	}
}

func (c *CumulativeDist) SetDist(weights []float64) {
	c.Reset(len(weights))
	var sum float64
	for i, w := range weights {
		sum += w
		c.cum[i] = sum
	}
	c.norm = sum
}

func (c *CumulativeDist) Norm() float64 {
	return c.norm
}

func (c *CumulativeDist) SampleFrom(u float64) int {
	i := sort.Search(len(c.cum), func(i int) bool { return c.cum[i] > u })
	if i >= c.k {
		i = c.k - 1
	}
	return i
}
