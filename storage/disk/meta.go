package disk

import (
	"bytes"
	"encoding/binary"

	"github.com/dbcore/pagestore/common"
)

// metaPage is the in-memory mirror of physical page 0: a running count
// of allocated pages, the number of extents the file currently has, and
// each extent's used-slot count. It is loaded once at Open and written
// back to physical page 0 at Close and after every allocate/free.
type metaPage struct {
	numAllocatedPages uint32
	numExtents        uint32
	extentUsedPage    []uint32
}

func newMetaPage() *metaPage {
	return &metaPage{extentUsedPage: make([]uint32, 0)}
}

// growTo ensures extentUsedPage has at least n entries.
func (m *metaPage) growTo(n uint32) {
	for uint32(len(m.extentUsedPage)) < n {
		m.extentUsedPage = append(m.extentUsedPage, 0)
	}
}

// serialize renders the meta page to its on-disk layout: num_allocated_pages
// (4 bytes), num_extents (4 bytes), then extent_used_page[0..] packed as
// 4-byte entries, little-endian, truncated/zero-padded to one page.
func (m *metaPage) serialize() [common.PageSize]byte {
	var out [common.PageSize]byte
	binary.LittleEndian.PutUint32(out[0:4], m.numAllocatedPages)
	binary.LittleEndian.PutUint32(out[4:8], m.numExtents)
	off := 8
	for _, used := range m.extentUsedPage {
		if off+4 > common.PageSize {
			break
		}
		binary.LittleEndian.PutUint32(out[off:off+4], used)
		off += 4
	}
	return out
}

// deserializeMetaPage parses a raw page buffer written by serialize. A
// short (all-zero) buffer yields an empty, zeroed meta page, matching
// the "file is short, zero-fill" rule in §4.B.
func deserializeMetaPage(data []byte) *metaPage {
	m := newMetaPage()
	r := bytes.NewReader(data)
	binary.Read(r, binary.LittleEndian, &m.numAllocatedPages)
	binary.Read(r, binary.LittleEndian, &m.numExtents)
	m.growTo(m.numExtents)
	for e := uint32(0); e < m.numExtents; e++ {
		off := 8 + int(e)*4
		if off+4 > len(data) {
			break
		}
		m.extentUsedPage[e] = binary.LittleEndian.Uint32(data[off : off+4])
	}
	return m
}
