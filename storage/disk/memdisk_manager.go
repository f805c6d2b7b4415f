// Grounded on storage/disk/virtual_disk_manager_impl.go, which backs a
// DiskManager with a github.com/dsnet/golib/memfile.File instead of an
// *os.File so tests exercising many extents don't pay real filesystem
// I/O. The extent/bitmap bookkeeping is identical to FileDiskManager;
// only the raw page read/write primitives differ, exactly as in the
// teacher's own Impl/VirtualImpl split.

package disk

import (
	"github.com/dsnet/golib/memfile"
	"go.uber.org/zap"

	"github.com/dbcore/pagestore/common"
	"github.com/dbcore/pagestore/types"
)

// MemDiskManager is an in-memory DiskManager, identical in observable
// behavior to FileDiskManager but backed by a memfile.File. Intended
// for tests; nothing written to it survives process exit.
type MemDiskManager struct {
	mu   *common.RecursiveMutex
	db   *memfile.File
	size int64
	meta *metaPage
}

// NewMemDiskManager returns an empty in-memory DiskManager.
func NewMemDiskManager() *MemDiskManager {
	d := &MemDiskManager{
		mu: common.NewRecursiveMutex(),
		db: memfile.New(make([]byte, 0)),
	}
	d.meta = newMetaPage()
	return d
}

// Close is a no-op; nothing backs a MemDiskManager but process memory.
func (d *MemDiskManager) Close() {}

func (d *MemDiskManager) readPhysical(phys int64, buf []byte) {
	for i := range buf[:common.PageSize] {
		buf[i] = 0
	}
	offset := phys * common.PageSize
	if offset >= d.size {
		return
	}
	d.db.ReadAt(buf[:common.PageSize], offset)
}

func (d *MemDiskManager) writePhysicalLocked(phys int64, buf []byte) {
	offset := phys * common.PageSize
	n, err := d.db.WriteAt(buf[:common.PageSize], offset)
	if err != nil {
		common.Log.Warn("memdisk: write failed", zap.Int64("physical_page", phys), zap.Error(err))
		return
	}
	if end := offset + int64(n); end > d.size {
		d.size = end
	}
}

func (d *MemDiskManager) ReadPage(logical types.PageID, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readPhysical(d.dataPhysicalID(logical), buf)
	return nil
}

func (d *MemDiskManager) WritePage(logical types.PageID, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writePhysicalLocked(d.dataPhysicalID(logical), buf)
	return nil
}

func (d *MemDiskManager) dataPhysicalID(logical types.PageID) int64 {
	l := int64(logical)
	m := int64(common.SlotsPerExtent)
	group := l / m
	off := l % m
	return group*(m+1) + off + 2
}

func (d *MemDiskManager) readBitmap(extent uint32) *BitmapPage {
	buf := make([]byte, common.PageSize)
	d.readPhysical(bitmapPhysicalID(extent), buf)
	return DeserializeBitmapPage(buf)
}

func (d *MemDiskManager) writeBitmapLocked(extent uint32, b *BitmapPage) {
	buf := b.Serialize()
	d.writePhysicalLocked(bitmapPhysicalID(extent), buf[:])
}

func (d *MemDiskManager) AllocatePage() types.PageID {
	d.mu.Lock()
	defer d.mu.Unlock()

	for e := uint32(0); e < d.meta.numExtents; e++ {
		if d.meta.extentUsedPage[e] >= common.SlotsPerExtent {
			continue
		}
		bitmap := d.readBitmap(e)
		offset, ok := bitmap.Allocate()
		if !ok {
			continue
		}
		d.meta.extentUsedPage[e]++
		d.meta.numAllocatedPages++
		d.writeBitmapLocked(e, bitmap)
		return types.PageID(e*common.SlotsPerExtent + offset)
	}

	newExtent := d.meta.numExtents
	d.meta.numExtents++
	d.meta.growTo(d.meta.numExtents)

	bitmap := NewBitmapPage()
	offset, ok := bitmap.Allocate()
	common.Assert(ok, "memdisk: allocate on a fresh bitmap must succeed")

	d.writeBitmapLocked(newExtent, bitmap)
	d.meta.extentUsedPage[newExtent] = 1
	d.meta.numAllocatedPages++

	return types.PageID(newExtent*common.SlotsPerExtent + offset)
}

func (d *MemDiskManager) DeallocatePage(logical types.PageID) {
	if logical < 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	extent := uint32(logical) / common.SlotsPerExtent
	if extent >= d.meta.numExtents {
		return
	}
	offset := uint32(logical) % common.SlotsPerExtent

	bitmap := d.readBitmap(extent)
	if !bitmap.Deallocate(offset) {
		return
	}
	d.meta.extentUsedPage[extent]--
	d.meta.numAllocatedPages--
	d.writeBitmapLocked(extent, bitmap)
}

func (d *MemDiskManager) IsPageFree(logical types.PageID) bool {
	if logical < 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	extent := uint32(logical) / common.SlotsPerExtent
	if extent >= d.meta.numExtents {
		return true
	}
	offset := uint32(logical) % common.SlotsPerExtent
	return d.readBitmap(extent).IsFree(offset)
}

func (d *MemDiskManager) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}
