// Package graph implements the concurrent vertex-counter store the
// distributed substrate's counter-update phase ships partial counts
// into: a lock-free, per-vertex atomic-mark protocol standing in for
// a mutex-protected accumulate, since shipment and merge must
// interleave across many worker goroutines without a store-wide lock.
package graph

import (
	"sync/atomic"

	"github.com/wangkuiyi/vertexlda/counts"
)

// Vertex counter slot states. A slot starts Empty (never touched),
// moves to Open once it has been initialized and is idle, and is
// briefly marked Writing while a goroutine holds exclusive access to
// merge its partial counts in. Writing is a spinlock state, not a
// blocking one: contending goroutines retry rather than park, which
// is fine because the critical section (a ForEach over a worker's
// small local diff) is short.
const (
	slotEmpty   int32 = 0
	slotWriting int32 = -1
	slotOpen    int32 = 1<<31 - 1 // math.MaxInt32
)

// VertexCounters is the authoritative, concurrency-safe store for one
// partition's worth of vertex topic-counters (either all term
// vertices or all doc vertices of that partition, never mixed).
type VertexCounters struct {
	state   []int32
	counter []counts.TC
	k       int

	// noPromote pins every counter to its sparse representation:
	// document stores stay sparse+sparse no matter how many topics a
	// document accumulates, while term stores promote at K/8.
	noPromote bool
}

func NewVertexCounters(n, k int) *VertexCounters {
	return &VertexCounters{
		state:   make([]int32, n),
		counter: make([]counts.TC, n),
		k:       k,
	}
}

// NewSparseVertexCounters builds a store whose counters never promote
// to dense, the representation rule for doc vertices.
func NewSparseVertexCounters(n, k int) *VertexCounters {
	v := NewVertexCounters(n, k)
	v.noPromote = true
	return v
}

// MergePartial folds delta into vertex's authoritative counter,
// associatively and commutatively: concurrent MergePartial calls
// against different vertices never block each other, and calls
// against the same vertex serialize via the slot's atomic mark
// without ever holding a lock across a potentially slow caller. Once
// the merge completes, the slot is promoted from Sparse to Dense if
// its active size has crossed the K/8 threshold, applied
// unconditionally, including on a sparse-plus-sparse merge (promotion
// on first assignment alone would miss density that only accumulates
// across later merges).
func (v *VertexCounters) MergePartial(vertex int, delta counts.TC) {
	for {
		s := atomic.LoadInt32(&v.state[vertex])
		switch s {
		case slotEmpty:
			if atomic.CompareAndSwapInt32(&v.state[vertex], slotEmpty, slotWriting) {
				v.counter[vertex] = delta.Clone()
				v.promote(vertex)
				atomic.StoreInt32(&v.state[vertex], slotOpen)
				return
			}
		case slotOpen:
			if atomic.CompareAndSwapInt32(&v.state[vertex], slotOpen, slotWriting) {
				cur := v.counter[vertex]
				delta.ForEach(func(topic int, c int64) error {
					if c > 0 {
						cur.Inc(topic, int(c))
					} else if c < 0 {
						cur.Dec(topic, int(-c))
					}
					return nil
				})
				v.promote(vertex)
				atomic.StoreInt32(&v.state[vertex], slotOpen)
				return
			}
		default: // slotWriting: another goroutine holds the slot; retry.
		}
	}
}

// promote swaps a Sparse counter for an equivalent Dense one once its
// active size reaches the shared K/8 threshold. Caller must hold the
// slot in slotWriting state.
func (v *VertexCounters) promote(vertex int) {
	if v.noPromote {
		return
	}
	if s, ok := v.counter[vertex].(counts.Sparse); ok {
		if counts.ShouldPromote(s.Len(), v.k) {
			v.counter[vertex] = counts.Promote(s, v.k)
		}
	}
}

// Snapshot returns the current counter for vertex, or nil if it has
// never been touched. The caller must not mutate the returned value;
// it may be concurrently replaced by a promotion.
func (v *VertexCounters) Snapshot(vertex int) counts.TC {
	for {
		s := atomic.LoadInt32(&v.state[vertex])
		if s != slotWriting {
			return v.counter[vertex]
		}
	}
}

func (v *VertexCounters) Len() int { return len(v.counter) }
