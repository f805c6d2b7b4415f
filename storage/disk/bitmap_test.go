package disk

import "testing"

import "github.com/dbcore/pagestore/common"

func TestBitmapAllocateSequential(t *testing.T) {
	b := NewBitmapPage()
	for i := uint32(0); i < 5; i++ {
		offset, ok := b.Allocate()
		if !ok {
			t.Fatalf("allocate %d: expected success", i)
		}
		if offset != i {
			t.Fatalf("allocate %d: got offset %d", i, offset)
		}
	}
	if b.PageAllocated() != 5 {
		t.Fatalf("expected pageAllocated=5, got %d", b.PageAllocated())
	}
}

func TestBitmapAllocateFull(t *testing.T) {
	b := NewBitmapPage()
	for i := uint32(0); i < common.SlotsPerExtent; i++ {
		if _, ok := b.Allocate(); !ok {
			t.Fatalf("allocate %d: expected success while extent has room", i)
		}
	}
	if _, ok := b.Allocate(); ok {
		t.Fatalf("expected allocate to fail once extent is full")
	}
}

func TestBitmapDeallocateMovesNextFreeHint(t *testing.T) {
	b := NewBitmapPage()
	for i := 0; i < 10; i++ {
		b.Allocate()
	}
	if !b.Deallocate(3) {
		t.Fatalf("expected deallocate of offset 3 to succeed")
	}
	offset, ok := b.Allocate()
	if !ok || offset != 3 {
		t.Fatalf("expected reallocate to reuse freed offset 3, got offset=%d ok=%v", offset, ok)
	}
}

func TestBitmapDeallocateDoubleFreeIsNoOp(t *testing.T) {
	b := NewBitmapPage()
	b.Allocate()
	if !b.Deallocate(0) {
		t.Fatalf("first deallocate should succeed")
	}
	if b.Deallocate(0) {
		t.Fatalf("second deallocate of the same offset should be a no-op")
	}
}

func TestBitmapDeallocateOutOfRange(t *testing.T) {
	b := NewBitmapPage()
	if b.Deallocate(common.SlotsPerExtent) {
		t.Fatalf("out-of-range deallocate should report failure")
	}
}

func TestBitmapIsFree(t *testing.T) {
	b := NewBitmapPage()
	if !b.IsFree(0) {
		t.Fatalf("fresh bitmap should report offset 0 free")
	}
	b.Allocate()
	if b.IsFree(0) {
		t.Fatalf("offset 0 should no longer be free after allocate")
	}
	if b.IsFree(common.SlotsPerExtent) {
		t.Fatalf("out-of-range offset should report not free: there is no such slot")
	}
}

func TestBitmapAllocateAfterFillReusesLowestFreedSlot(t *testing.T) {
	b := NewBitmapPage()
	var last uint32
	for i := uint32(0); i < common.SlotsPerExtent; i++ {
		last, _ = b.Allocate()
	}
	if last != common.SlotsPerExtent-1 {
		t.Fatalf("expected last allocation to be the final slot, got %d", last)
	}

	b.Deallocate(2)
	b.Deallocate(common.SlotsPerExtent - 1)
	offset, ok := b.Allocate()
	if !ok || offset != 2 {
		t.Fatalf("expected allocate to reuse the lowest freed offset 2 (the hint was moved back to it), got offset=%d ok=%v", offset, ok)
	}
}

func TestBitmapSerializeRoundTrip(t *testing.T) {
	b := NewBitmapPage()
	b.Allocate()
	b.Allocate()
	b.Deallocate(0)

	buf := b.Serialize()
	got := DeserializeBitmapPage(buf[:])

	if got.PageAllocated() != b.PageAllocated() {
		t.Fatalf("round trip changed pageAllocated: got %d, want %d", got.PageAllocated(), b.PageAllocated())
	}
	if got.IsFree(0) != b.IsFree(0) || got.IsFree(1) != b.IsFree(1) {
		t.Fatalf("round trip changed slot allocation state")
	}
}
