package counts

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func exampleTC(c TC, exp string) error {
	c.Inc(0, 1)
	c.Inc(1, 2)

	if e := c.ForEach(func(topic int, count int64) error {
		return errors.New(fmt.Sprintf("%d %d ", topic, count))
	}); fmt.Sprint(e) != exp {
		return fmt.Errorf("expecting %s; got: %v", exp, e)
	}
	return nil
}

func TestDenseIsTC(t *testing.T) {
	var d TC = NewDense(2)
	if e := exampleTC(d, "0 1 "); e != nil {
		t.Errorf("%v", e)
	}
}

// Sparse is a map, so ForEach visits its entries in no fixed order:
// check the visited set, and that the first error stops the walk.
func TestSparseIsTC(t *testing.T) {
	var s TC = NewSparse()
	s.Inc(0, 1)
	s.Inc(1, 2)
	got := make(map[int]int64)
	s.ForEach(func(topic int, count int64) error {
		got[topic] = count
		return nil
	})
	if want := map[int]int64{0: 1, 1: 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("expecting %v; got: %v", want, got)
	}
	stop := errors.New("stop")
	visits := 0
	if e := s.ForEach(func(int, int64) error { visits++; return stop }); e != stop || visits != 1 {
		t.Errorf("expecting ForEach to stop after one visit with the error; got %v after %d visits", e, visits)
	}
}

func TestSparseIncDec(t *testing.T) {
	s := Sparse{}
	s.Inc(2, 10)
	if len(s) != 1 {
		t.Errorf("expecting len(s) = 1, got %d", len(s))
	}
	if s[2] != 10 {
		t.Errorf("expecting s[2] = 10, got %d", s[2])
	}

	s.Dec(2, 5)
	if s[2] != 5 {
		t.Errorf("expecting s[2] = 5, got %d", s[2])
	}

	s.Dec(2, 5)
	if len(s) != 0 {
		t.Errorf("expecting len(s) = 0, got %d", len(s))
	}
}

func TestSparseClone(t *testing.T) {
	s := Sparse{1: 2, 3: 4}
	c := s.Clone()
	if !reflect.DeepEqual(c, TC(s)) {
		t.Errorf("expected %v, got %v", s, c)
	}
}

func TestPromotionThreshold(t *testing.T) {
	if PromotionThreshold(16) != 2 {
		t.Errorf("expecting 2, got %d", PromotionThreshold(16))
	}
	if ShouldPromote(1, 16) {
		t.Errorf("1 active entry over K=16 should not promote")
	}
	if !ShouldPromote(2, 16) {
		t.Errorf("2 active entries over K=16 should promote")
	}
}

func TestPromote(t *testing.T) {
	s := Sparse{1: 5, 3: 7}
	d := Promote(s, 4)
	want := Dense{0, 5, 0, 7}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("expected %v, got %v", want, d)
	}
}

func TestDenseLenIsSlotCount(t *testing.T) {
	d := NewDense(5)
	d.Inc(0, 1)
	if d.Len() != 5 {
		t.Errorf("expecting Dense.Len() = K = 5, got %d", d.Len())
	}
}
