package counts

import (
	"fmt"
	"testing"
)

func TestOrderedAssign(t *testing.T) {
	o := NewOrdered().Assign(Sparse{})
	if fmt.Sprint(o) != "[ ]" {
		t.Errorf("expected [ ], got %v", o)
	}

	o = NewOrdered().Assign(Sparse{0: 7, 1: 2, 2: 1, 3: 10})
	want := "[ 3:10 0:7 1:2 2:1 ]"
	if fmt.Sprint(o) != want {
		t.Errorf("expected %s, got %v", want, o)
	}
}

func TestOrderedIncMaintainsDescendingOrder(t *testing.T) {
	o := NewOrderedAndReserve(0)
	for i, n := range []int{1, 2, 3, 1} {
		o.Inc(i, n)
	}
	if fmt.Sprint(o) != "[ 2:3 1:2 0:1 3:1 ]" {
		t.Errorf("got %v", o)
	}
}

func TestOrderedDec(t *testing.T) {
	o := NewOrdered().Assign(Sparse{0: 1, 1: 2})
	o.Dec(1, 1)
	if fmt.Sprint(o) != "[ 1:1 0:1 ]" {
		t.Errorf("expecting [ 1:1 0:1 ], got %v", o)
	}
	o.Dec(0, 1)
	if fmt.Sprint(o) != "[ 1:1 ]" {
		t.Errorf("expecting [ 1:1 ], got %v", o)
	}
	o.Dec(1, 1)
	if fmt.Sprint(o) != "[ ]" {
		t.Errorf("expecting [ ], got %v", o)
	}
}

func TestOrderedClone(t *testing.T) {
	o := NewOrdered().Assign(Sparse{0: 1, 1: 2, 3: 5, 2: 8})
	c := o.Clone()
	if fmt.Sprint(c) != fmt.Sprint(o) {
		t.Errorf("expected %v, got %v", o, c)
	}
}
