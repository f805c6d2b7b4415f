// Grounded on storage/page/page.go: a frame is the buffer pool's unit
// of residency — a fixed PageSize byte array plus the bookkeeping the
// pool needs to decide whether the frame can be reused (pin count,
// dirty bit) and what it currently holds (page id).

package buffer

import (
	"github.com/dbcore/pagestore/common"
	"github.com/dbcore/pagestore/types"
)

// FrameID identifies a slot in the buffer pool's fixed-size frame array.
type FrameID int32

// Frame is one resident copy of a page's bytes plus the metadata the
// buffer pool manager needs to track it.
type Frame struct {
	pageID   types.PageID
	pinCount int
	isDirty  bool
	data     [common.PageSize]byte
}

func newEmptyFrame() *Frame {
	return &Frame{pageID: types.InvalidPageID}
}

// PageID returns the logical page id currently resident in the frame.
func (f *Frame) PageID() types.PageID { return f.pageID }

// PinCount returns the number of outstanding pins on the frame.
func (f *Frame) PinCount() int { return f.pinCount }

// IsDirty reports whether the frame has unflushed writes.
func (f *Frame) IsDirty() bool { return f.isDirty }

// SetIsDirty sets the frame's dirty bit.
func (f *Frame) SetIsDirty(dirty bool) { f.isDirty = dirty }

// Data returns the frame's backing byte array.
func (f *Frame) Data() *[common.PageSize]byte { return &f.data }

func (f *Frame) incPinCount() { f.pinCount++ }

func (f *Frame) decPinCount() {
	if f.pinCount > 0 {
		f.pinCount--
	}
}

// reset clears the frame so it can hold a different page id.
func (f *Frame) reset(pageID types.PageID) {
	f.pageID = pageID
	f.pinCount = 0
	f.isDirty = false
	for i := range f.data {
		f.data[i] = 0
	}
}
