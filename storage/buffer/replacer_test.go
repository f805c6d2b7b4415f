package buffer

import "testing"

func TestLRUReplacerVictimOrder(t *testing.T) {
	r := NewLRUReplacer(7)

	for _, id := range []FrameID{1, 2, 3, 4, 5} {
		r.Unpin(id)
	}
	if r.Size() != 5 {
		t.Fatalf("expected size 5, got %d", r.Size())
	}

	r.Pin(3)
	r.Pin(4)
	if r.Size() != 3 {
		t.Fatalf("expected size 3 after pinning two, got %d", r.Size())
	}

	r.Unpin(4)
	// current order from least to most recently used: 1, 2, 5, 4
	for _, want := range []FrameID{1, 2, 5, 4} {
		got, ok := r.Victim()
		if !ok {
			t.Fatalf("expected a victim, got none")
		}
		if got != want {
			t.Fatalf("expected victim %d, got %d", want, got)
		}
	}

	if _, ok := r.Victim(); ok {
		t.Fatalf("expected no victim once replacer is empty")
	}
}

func TestLRUReplacerUnpinIsIdempotent(t *testing.T) {
	r := NewLRUReplacer(3)
	r.Unpin(1)
	r.Unpin(1)
	if r.Size() != 1 {
		t.Fatalf("expected duplicate unpin to be a no-op, got size %d", r.Size())
	}
}

func TestLRUReplacerPinUnknownFrameIsNoOp(t *testing.T) {
	r := NewLRUReplacer(3)
	r.Pin(42)
	if r.Size() != 0 {
		t.Fatalf("expected size 0, got %d", r.Size())
	}
}
