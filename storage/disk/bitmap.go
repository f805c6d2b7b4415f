// Bitmap page layout is grounded on github.com/Jolsho/My-Go-DB's
// GrabFreeSlot/ReleaseSlot bit-twiddling and on
// jeremytregunna-riddling-kgstore's PageAllocator free-list bookkeeping,
// adapted to the byte-exact header/body layout spec.md §3/§6 require.

package disk

import (
	"bytes"
	"encoding/binary"

	"github.com/dbcore/pagestore/common"
)

// BitmapPage is a fixed-size bit-vector tracking allocation of up to
// common.SlotsPerExtent data-page slots within one extent. Bit=1 means
// allocated; bit at byte b, bit i (LSB=0) is slot b*8+i.
type BitmapPage struct {
	pageAllocated uint32
	nextFreePage  uint32
	body          [common.MaxChars]byte
}

// NewBitmapPage returns a freshly zeroed bitmap page.
func NewBitmapPage() *BitmapPage {
	return &BitmapPage{}
}

// PageAllocated returns the popcount of the body — the number of
// currently-allocated slots.
func (b *BitmapPage) PageAllocated() uint32 {
	return b.pageAllocated
}

// BitmapSnapshot is a read-only occupancy summary of one extent's
// bitmap page, for diagnostic tools such as cmd/pagestat.
type BitmapSnapshot struct {
	AllocatedSlots uint32
	FreeSlots      uint32
	NextFreeHint   uint32
}

// Snapshot returns b's occupancy counts without exposing the body.
func (b *BitmapPage) Snapshot() BitmapSnapshot {
	return BitmapSnapshot{
		AllocatedSlots: b.pageAllocated,
		FreeSlots:      common.SlotsPerExtent - b.pageAllocated,
		NextFreeHint:   b.nextFreePage,
	}
}

// Allocate finds the first free slot, marks it allocated, and returns
// its offset within the extent. Returns false if the extent is full.
func (b *BitmapPage) Allocate() (offset uint32, ok bool) {
	if b.pageAllocated == common.SlotsPerExtent {
		return 0, false
	}

	start := b.nextFreePage
	for i := uint32(0); i < common.SlotsPerExtent; i++ {
		candidate := (start + i) % common.SlotsPerExtent
		byteIdx := candidate / 8
		bit := candidate % 8
		if b.body[byteIdx]&(1<<bit) == 0 {
			b.body[byteIdx] |= 1 << bit
			b.pageAllocated++
			b.nextFreePage = candidate + 1
			return candidate, true
		}
	}
	// unreachable as long as pageAllocated is maintained correctly
	return 0, false
}

// Deallocate clears the bit at offset. Returns false if offset is out
// of range or the slot was already free (double-free, per spec §7, is
// a silent no-op at this layer).
func (b *BitmapPage) Deallocate(offset uint32) bool {
	if offset >= common.SlotsPerExtent {
		return false
	}
	byteIdx := offset / 8
	bit := offset % 8
	if b.body[byteIdx]&(1<<bit) == 0 {
		return false
	}
	b.body[byteIdx] &^= 1 << bit
	b.pageAllocated--
	if offset < b.nextFreePage {
		b.nextFreePage = offset
	}
	return true
}

// IsFree reports whether offset names a free slot. Out-of-range offsets
// are reported not free: there is no such slot to be free.
func (b *BitmapPage) IsFree(offset uint32) bool {
	if offset >= common.SlotsPerExtent {
		return false
	}
	byteIdx := offset / 8
	bit := offset % 8
	return b.body[byteIdx]&(1<<bit) == 0
}

// Serialize renders the bitmap page to its on-disk byte-exact layout:
// 4-byte page_allocated, 4-byte next_free_page, then MaxChars bytes of
// bit storage, little-endian, no padding.
func (b *BitmapPage) Serialize() [common.PageSize]byte {
	var out [common.PageSize]byte
	binary.LittleEndian.PutUint32(out[0:4], b.pageAllocated)
	binary.LittleEndian.PutUint32(out[4:8], b.nextFreePage)
	copy(out[common.BitmapHeaderSize:], b.body[:])
	return out
}

// DeserializeBitmapPage parses a raw page buffer written by Serialize.
func DeserializeBitmapPage(data []byte) *BitmapPage {
	b := &BitmapPage{}
	r := bytes.NewReader(data)
	binary.Read(r, binary.LittleEndian, &b.pageAllocated)
	binary.Read(r, binary.LittleEndian, &b.nextFreePage)
	copy(b.body[:], data[common.BitmapHeaderSize:])
	return b
}
