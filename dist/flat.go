package dist

// FlatDist is a thin dispatcher over a dense CumulativeDist for
// wide/dense weight vectors and a sparse index-remapped
// CumulativeDist for vectors where only a handful of outcomes carry
// mass (the smoothing-only bucket's non-zero entries, say). It keeps
// the Discrete interface uniform across both representations instead
// of asking kernels to branch on which one they hold.
type FlatDist struct {
	dense *CumulativeDist

	sparse  *CumulativeDist
	indices []int // sparse.SampleFrom(u) position -> real topic id
	k       int
}

func NewFlatDist() *FlatDist {
	return &FlatDist{dense: NewCumulativeDist(), sparse: NewCumulativeDist()}
}

func (f *FlatDist) Reset(k int) {
	f.k = k
	f.dense.Reset(k)
	f.indices = f.indices[:0]
}

// SetDist picks the sparse path when fewer than 1/8th of the K slots
// carry non-zero mass, matching the counter promotion threshold so a
// FlatDist and a vertex counter agree on when "sparse" stops paying
// off.
func (f *FlatDist) SetDist(weights []float64) {
	nonzero := 0
	for _, w := range weights {
		if w != 0 {
			nonzero++
		}
	}
	if nonzero*8 < len(weights) {
		f.setSparse(weights, nonzero)
		return
	}
	f.indices = nil
	f.dense.SetDist(weights)
}

func (f *FlatDist) setSparse(weights []float64, nonzero int) {
	if cap(f.indices) < nonzero {
		f.indices = make([]int, 0, nonzero)
	} else {
		f.indices = f.indices[:0]
	}
	vals := make([]float64, 0, nonzero)
	for i, w := range weights {
		if w != 0 {
			f.indices = append(f.indices, i)
			vals = append(vals, w)
		}
	}
	f.sparse.SetDist(vals)
}

func (f *FlatDist) Norm() float64 {
	if f.indices != nil {
		return f.sparse.Norm()
	}
	return f.dense.Norm()
}

func (f *FlatDist) SampleFrom(u float64) int {
	if f.indices != nil {
		pos := f.sparse.SampleFrom(u)
		return f.indices[pos]
	}
	return f.dense.SampleFrom(u)
}
