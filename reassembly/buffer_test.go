package reassembly

import "testing"

func TestOrderedBufferInsertAndDrainOrder(t *testing.T) {
	b := newOrderedBuffer[string]()
	b.Insert(5, "f")
	b.Insert(3, "d")
	b.Insert(4, "e")

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if !b.Has(4) {
		t.Fatalf("Has(4) = false, want true")
	}
	if b.Has(99) {
		t.Fatalf("Has(99) = true, want false")
	}

	if _, ok := b.PopIfMatches(5); ok {
		t.Fatalf("PopIfMatches(5) should fail while 3 is the minimum")
	}

	v, ok := b.PopIfMatches(3)
	if !ok || v != "d" {
		t.Fatalf("PopIfMatches(3) = %q, %v; want d, true", v, ok)
	}
	v, ok = b.PopIfMatches(4)
	if !ok || v != "e" {
		t.Fatalf("PopIfMatches(4) = %q, %v; want e, true", v, ok)
	}
	v, ok = b.PopIfMatches(5)
	if !ok || v != "f" {
		t.Fatalf("PopIfMatches(5) = %q, %v; want f, true", v, ok)
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

func TestOrderedBufferHasAfterPop(t *testing.T) {
	b := newOrderedBuffer[int]()
	b.Insert(1, 100)
	if _, ok := b.PopIfMatches(1); !ok {
		t.Fatalf("PopIfMatches(1) failed")
	}
	if b.Has(1) {
		t.Fatalf("Has(1) = true after pop, want false")
	}
}
