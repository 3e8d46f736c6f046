package counts

import (
	"encoding/gob"
	"fmt"
	"math"
)

// Sparse represents a topic-count vector as a Go map, used for vertex
// counters whose active size stays well below K. Len reports the
// active size (number of non-zero topics), which is exactly the
// quantity ShouldPromote compares against K/8.
type Sparse map[int32]int32

func init() {
	gob.Register(Sparse{})
}

func NewSparse() Sparse {
	return make(Sparse)
}

func (s Sparse) Clear() {
	for k := range s {
		delete(s, k)
	}
}

func (s Sparse) Add(o Sparse) {
	for k, v := range o {
		s[k] += v
	}
}

func (s Sparse) Equal(o Sparse) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if v2, ok := o[k]; !ok || v2 != v {
			return false
		}
	}
	return true
}

func (s Sparse) Len() int {
	return len(s)
}

func (s Sparse) At(topic int) int64 {
	return int64(s[int32(topic)])
}

func (s Sparse) Inc(topic, delta int) {
	if delta <= 0 {
		panic(fmt.Sprintf("Inc(topic=%d, delta=%d): delta must be > 0",
			topic, delta))
	}
	if delta > int(math.MaxInt32) {
		panic(fmt.Sprintf("delta (%d) larger than MaxInt32", delta))
	}
	t := int32(topic)
	if s[t] >= math.MaxInt32-int32(delta) {
		panic(fmt.Sprintf("s[%d] = %d overflow", topic, s[t]))
	}
	s[t] += int32(delta)
}

func (s Sparse) Dec(topic, delta int) {
	if delta <= 0 {
		panic(fmt.Sprintf("Dec(topic=%d, delta=%d): delta must be > 0",
			topic, delta))
	}
	t := int32(topic)
	s[t] -= int32(delta)
	// A worker's diff records net deltas, so entries may legitimately
	// go negative; only exact zeros are pruned.
	if s[t] == 0 {
		delete(s, t)
	}
}

func (s Sparse) ForEach(p func(topic int, count int64) error) error {
	for k, v := range s {
		if e := p(int(k), int64(v)); e != nil {
			return e
		}
	}
	return nil
}

func (s Sparse) Clone() TC {
	n := NewSparse()
	for k, v := range s {
		n[k] = v
	}
	return n
}
