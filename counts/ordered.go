package counts

import (
	"fmt"
	"math"
	"sort"
)

// Ordered represents a topic-count vector as two parallel arrays,
// Topics and Counts, with Counts held in descending order. Used for
// document-vertex counters: SparseLDA's doc-topic bucket walks a
// document's topics from most to least frequent, so keeping the
// vector pre-sorted saves a sort per sampled token.
type Ordered struct {
	Topics []int32
	Counts []int32
}

func NewOrdered() *Ordered {
	return &Ordered{}
}

// NewOrderedAndReserve preallocates capacity when the maximum active
// size is known ahead of time, e.g. min(K, document length).
func NewOrderedAndReserve(capacity int) *Ordered {
	return &Ordered{
		Topics: make([]int32, 0, capacity),
		Counts: make([]int32, 0, capacity),
	}
}

func (o *Ordered) Len() int { return len(o.Topics) }

func (o *Ordered) Less(i, j int) bool {
	return o.Counts[i] > o.Counts[j] ||
		(o.Counts[i] == o.Counts[j] && o.Topics[i] < o.Topics[j])
}

func (o *Ordered) Swap(i, j int) {
	o.Topics[i], o.Topics[j] = o.Topics[j], o.Topics[i]
	o.Counts[i], o.Counts[j] = o.Counts[j], o.Counts[i]
}

// Assign rebuilds o from any TC, sorted into descending order.
func (o *Ordered) Assign(s TC) *Ordered {
	o.Topics = make([]int32, 0, s.Len())
	o.Counts = make([]int32, 0, s.Len())
	s.ForEach(func(topic int, count int64) error {
		o.Topics = append(o.Topics, int32(topic))
		o.Counts = append(o.Counts, int32(count))
		return nil
	})
	sort.Sort(o)
	return o
}

func (o Ordered) String() string {
	out := "[ "
	for i, topic := range o.Topics {
		out += fmt.Sprintf("%d:%d ", topic, o.Counts[i])
	}
	out += "]"
	return out
}

func (o *Ordered) At(topic int) int64 {
	for i := range o.Topics {
		if int(o.Topics[i]) == topic {
			return int64(o.Counts[i])
		}
	}
	return 0
}

func (o *Ordered) Inc(topic, delta int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if delta <= 0 {
		panic(fmt.Sprintf("delta (%d) <= 0", delta))
	}
	if delta > int(math.MaxInt32) {
		panic(fmt.Sprintf("delta (%d) larger than MaxInt32", delta))
	}

	t := int32(topic)
	c := int32(delta)
	i := 0
	for i < len(o.Topics) && o.Topics[i] != t {
		i++
	}
	if i < len(o.Topics) {
		if o.Counts[i] >= math.MaxInt32-c {
			panic(fmt.Sprintf("o[%d] = %d overflow", i, o.Counts[i]))
		}
		o.Counts[i] += c
	} else {
		o.Topics = append(o.Topics, t)
		o.Counts = append(o.Counts, c)
	}

	c = o.Counts[i]
	for i > 0 && c > o.Counts[i-1] {
		o.Topics[i], o.Counts[i] = o.Topics[i-1], o.Counts[i-1]
		i--
	}
	o.Topics[i] = t
	o.Counts[i] = c
}

func (o *Ordered) Dec(topic, delta int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if delta <= 0 {
		panic(fmt.Sprintf("delta (%d) <= 0", delta))
	}

	t := int32(topic)
	c := int32(delta)
	i := 0
	for i < len(o.Topics) && o.Topics[i] != t {
		i++
	}
	if i >= len(o.Topics) {
		panic(fmt.Sprintf("topic %d does not exist", t))
	}
	if o.Counts[i] < c {
		panic(fmt.Sprintf("existing count (%d) < delta (%d)", o.Counts[i], c))
	}
	o.Counts[i] -= c

	c = o.Counts[i]
	for i+1 < len(o.Topics) && c < o.Counts[i+1] {
		o.Topics[i], o.Counts[i] = o.Topics[i+1], o.Counts[i+1]
		i++
	}
	o.Topics[i] = t
	o.Counts[i] = c

	if c == 0 {
		o.Topics = o.Topics[:i]
		o.Counts = o.Counts[:i]
	}
}

func (o *Ordered) ForEach(p func(topic int, count int64) error) error {
	for i := 0; i < len(o.Topics); i++ {
		if e := p(int(o.Topics[i]), int64(o.Counts[i])); e != nil {
			return e
		}
	}
	return nil
}

func (o *Ordered) Clone() TC {
	n := NewOrdered()
	n.Topics = append([]int32(nil), o.Topics...)
	n.Counts = append([]int32(nil), o.Counts...)
	return n
}
