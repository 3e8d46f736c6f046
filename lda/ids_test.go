package lda

import "testing"

func TestTermIdVirtualTag(t *testing.T) {
	plain := NewTermId(42)
	if plain.IsVirtual() {
		t.Errorf("plain term id reports virtual")
	}
	if plain.Real() != 42 {
		t.Errorf("expecting Real() = 42, got %d", plain.Real())
	}

	virt := NewVirtualTermId(42)
	if !virt.IsVirtual() {
		t.Errorf("virtual term id reports plain")
	}
	if virt.Real() != 42 {
		t.Errorf("expecting Real() = 42, got %d", virt.Real())
	}
	if virt == plain {
		t.Errorf("virtual and plain ids of the same index must differ")
	}
}

func TestUnknownTokenIdStaysNegative(t *testing.T) {
	v := NewVocabulary()
	if id := v.Id("nonesuch"); id.Real() >= 0 {
		t.Errorf("unknown token resolved to %d", id.Real())
	}
}

func TestVertexIdRoundTrip(t *testing.T) {
	tv := TermVertexId(NewTermId(7))
	if !tv.IsTermId() || tv.IsVirtualTermId() {
		t.Errorf("term vertex mis-tagged: term=%v virtual=%v", tv.IsTermId(), tv.IsVirtualTermId())
	}
	if tv.AsTermId() != NewTermId(7) {
		t.Errorf("term vertex round-trip lost the id")
	}

	vv := TermVertexId(NewVirtualTermId(7))
	if !vv.IsVirtualTermId() {
		t.Errorf("virtual term vertex not tagged virtual")
	}
	if vv.AsTermId() != NewVirtualTermId(7) {
		t.Errorf("virtual term vertex round-trip lost the tag")
	}

	dv := DocVertexId(DocId(9))
	if dv.IsTermId() {
		t.Errorf("doc vertex tagged as term")
	}
	if dv.AsDocId() != 9 {
		t.Errorf("doc vertex round-trip lost the id")
	}
}
