package dist

// AliasTable builds Walker/Vose alias tables: O(K) build, O(1) sample.
// Grounded on the two-worklist (small/large) construction shown in the
// standalone alias-table reference, generalized to satisfy Discrete
// (rebuildable in place, legacy math/rand source passed explicitly so
// sampling stays reproducible given a seeded *rand.Rand, matching how
// every RNG draw in the sampler flows through an explicit *rand.Rand
// rather than the global source).
type AliasTable struct {
	k     int
	norm  float64
	prob  []float64
	alias []int

	small []int // scratch worklists, reused across SetDist calls
	large []int
}

func NewAliasTable() *AliasTable {
	return &AliasTable{}
}

func (a *AliasTable) Reset(k int) {
	a.k = k
	a.norm = 0
	if cap(a.prob) < k {
		a.prob = make([]float64, k)
		a.alias = make([]int, k)
		a.small = make([]int, 0, k)
		a.large = make([]int, 0, k)
	} else {
		a.prob = a.prob[:k]
		a.alias = a.alias[:k]
	}
}

func (a *AliasTable) Norm() float64 {
	return a.norm
}

// SetDist builds the table via Vose's method: normalize so the mean
// weight is 1, classify each outcome as small (<1) or large (>=1),
// then repeatedly pair the top of each worklist, donating the large
// outcome's surplus mass to fill out the small outcome's bin.
func (a *AliasTable) SetDist(weights []float64) {
	k := len(weights)
	a.Reset(k)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	a.norm = sum
	if sum <= 0 {
		for i := range a.prob {
			a.prob[i] = 1
			a.alias[i] = i
		}
		return
	}

	norm := make([]float64, k)
	small := a.small[:0]
	large := a.large[:0]
	for i, w := range weights {
		norm[i] = w * float64(k) / sum
		if norm[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		a.prob[s] = norm[s]
		a.alias[s] = l

		norm[l] = norm[l] - (1 - norm[s])
		if norm[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	for _, i := range large {
		a.prob[i] = 1
	}
	for _, i := range small {
		a.prob[i] = 1
	}
}

// SampleFrom draws a column uniformly (via u/norm split into a bin
// index and an in-bin remainder) and flips the biased coin for that
// bin.
func (a *AliasTable) SampleFrom(u float64) int {
	frac := u / a.norm * float64(a.k)
	i := int(frac)
	if i >= a.k {
		i = a.k - 1
	}
	if frac-float64(i) < a.prob[i] {
		return i
	}
	return a.alias[i]
}
