// Package counts implements the topic-count vector representations
// used as the per-vertex counters of the sampler: a dense array for
// vertices touching most topics, and a sparse map for vertices that
// only ever see a handful. This mirrors the dense/sparse histogram
// split of the teacher's hist package (not part of this repository),
// generalized with the explicit
// promotion rule the sampler's counter-update phase relies on.
package counts

// TC is a topic-count vector: the per-vertex counter that both the
// term side and the document side of the bipartite token graph carry.
type TC interface {
	At(topic int) int64
	Inc(topic, delta int)
	Dec(topic, delta int)
	Len() int

	// ForEach visits every non-zero entry. Stops and returns the error
	// if p returns a non-nil error.
	ForEach(p func(topic int, count int64) error) error

	Clone() TC
}

// PromotionThreshold returns the active-size threshold at which a
// Sparse vector over K topics must be promoted to Dense: K/8, per the
// counter-update aggregation rule.
func PromotionThreshold(k int) int {
	return k / 8
}

// ShouldPromote reports whether a sparse vector with the given active
// size (over K topics) should be promoted to dense. When K is small
// enough that K/8 rounds down to 0, promotion never fires on an empty
// vector (activeSize 0 is always safe to keep sparse); it still fires
// once the vector has touched at least one topic, so K < 8 behaves as
// "promote once non-empty" rather than "always promote".
func ShouldPromote(activeSize, k int) bool {
	threshold := PromotionThreshold(k)
	if threshold == 0 {
		threshold = 1
	}
	return activeSize >= threshold
}

// Promote converts a Sparse vector to an equivalent Dense vector over
// k topics. It is the explicit promotion operation callers use once
// ShouldPromote reports true, rather than hiding the conversion behind
// every Inc/Dec call.
func Promote(s Sparse, k int) Dense {
	d := NewDense(k)
	for topic, c := range s {
		d[topic] = int64(c)
	}
	return d
}

// NewAuto returns a Sparse vector, the default representation for a
// freshly created vertex counter; callers promote explicitly via
// Promote once ShouldPromote fires.
func NewAuto() Sparse {
	return NewSparse()
}
