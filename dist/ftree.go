package dist

// FTree is a complete binary tree of prefix sums over K leaves (an
// F+ tree / Fenwick-style segment tree of masses): updating a single
// leaf's weight and resampling both cost O(log K), which beats
// rebuilding an AliasTable from scratch when only one or two outcomes
// change between samples (the case for LightLDA's word-proposal
// table, which only the current token's topic moves).
//
// No reference implementation of this structure turned up anywhere
// in the corpus; it is built directly from its textbook shape (a
// 1-indexed array where node i's two children are 2i and 2i+1, and
// every internal node holds the sum of its subtree's leaves).
type FTree struct {
	k    int
	tree []float64 // 1-indexed; tree[1] is the root (= Norm())
}

func NewFTree() *FTree {
	return &FTree{}
}

func (f *FTree) Reset(k int) {
	f.k = k
	n := 1
	for n < k {
		n *= 2
	}
	f.tree = make([]float64, 2*n)
}

func (f *FTree) capacity() int {
	return len(f.tree) / 2
}

// SetDist rebuilds every leaf and recomputes every internal sum
// bottom-up in O(K).
func (f *FTree) SetDist(weights []float64) {
	k := len(weights)
	if f.tree == nil || f.capacity() < k {
		f.Reset(k)
	} else {
		f.k = k
		for i := range f.tree {
			f.tree[i] = 0
		}
	}
	cap := f.capacity()
	for i, w := range weights {
		f.tree[cap+i] = w
	}
	for i := cap - 1; i >= 1; i-- {
		f.tree[i] = f.tree[2*i] + f.tree[2*i+1]
	}
}

// Update sets leaf topic's weight to w in O(log K), adjusting every
// ancestor's subtree sum.
func (f *FTree) Update(topic int, w float64) {
	i := f.capacity() + topic
	delta := w - f.tree[i]
	for i >= 1 {
		f.tree[i] += delta
		i /= 2
	}
}

func (f *FTree) Norm() float64 {
	if len(f.tree) == 0 {
		return 0
	}
	return f.tree[1]
}

// SampleFrom descends from the root: at each node, if u falls within
// the left child's mass it recurses left, otherwise it subtracts that
// mass and recurses right, terminating at a leaf in O(log K).
func (f *FTree) SampleFrom(u float64) int {
	i := 1
	cap := f.capacity()
	for i < cap {
		left := 2 * i
		if u < f.tree[left] {
			i = left
		} else {
			u -= f.tree[left]
			i = left + 1
		}
	}
	topic := i - cap
	if topic >= f.k {
		topic = f.k - 1
	}
	return topic
}
