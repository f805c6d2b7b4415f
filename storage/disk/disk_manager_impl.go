// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dbcore/pagestore/common"
	"github.com/dbcore/pagestore/types"
)

// FileDiskManager is the file-backed implementation of DiskManager. It
// owns the backing *os.File exclusively; running two instances against
// one path is undefined (spec §5).
type FileDiskManager struct {
	mu   *common.RecursiveMutex // guards db, meta, closed; recursive per spec §5
	db   *os.File
	path string
	meta *metaPage

	closed bool
}

// OpenDisk opens path read-write, creating it (and its parent
// directories) if it does not exist, and loads physical page 0 into an
// in-memory meta buffer. Failing to open the path is the one fatal
// condition in this layer (spec §7).
func OpenDisk(path string) *FileDiskManager {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			common.Log.Fatal("disk: cannot create database directory", zap.String("path", path), zap.Error(err))
		}
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		common.Log.Fatal("disk: cannot open database file", zap.String("path", path), zap.Error(err))
	}

	d := &FileDiskManager{mu: common.NewRecursiveMutex(), db: file, path: path}

	buf := make([]byte, common.PageSize)
	if _, err := d.readPhysical(common.MetaPageID, buf); err != nil {
		common.Log.Warn("disk: meta page read failed, starting empty", zap.Error(err))
	}
	d.meta = deserializeMetaPage(buf)

	return d
}

// Close writes the meta buffer back to physical page 0 and closes the
// file handle. Idempotent.
func (d *FileDiskManager) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.writeMetaLocked()
	if err := d.db.Close(); err != nil {
		common.Log.Warn("disk: close failed", zap.Error(err))
	}
	d.closed = true
}

func (d *FileDiskManager) writeMetaLocked() {
	buf := d.meta.serialize()
	if err := d.writePhysicalLocked(common.MetaPageID, buf[:]); err != nil {
		common.Log.Warn("disk: meta page write failed", zap.Error(err))
	}
}

// ReadPage reads PageSize bytes for logical into buf, zero-filling any
// portion past EOF.
func (d *FileDiskManager) ReadPage(logical types.PageID, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	physical := d.dataPhysicalID(logical)
	_, err := d.readPhysical(physical, buf)
	return err
}

// WritePage seeks to the mapped physical offset and writes PageSize
// bytes, extending the file as needed, then syncs. Write errors are
// logged, not propagated (spec §7).
func (d *FileDiskManager) WritePage(logical types.PageID, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	physical := d.dataPhysicalID(logical)
	return d.writePhysicalLocked(physical, buf)
}

// readPhysical reads PageSize bytes at physical page id phys into buf.
// Bytes past EOF are zero-filled and are not an error (spec §4.B "short
// files zero-fill"); a failed stat, seek or read is returned.
func (d *FileDiskManager) readPhysical(phys int64, buf []byte) (int, error) {
	for i := range buf[:common.PageSize] {
		buf[i] = 0
	}

	offset := phys * common.PageSize
	info, err := d.db.Stat()
	if err != nil {
		return 0, err
	}
	if offset >= info.Size() {
		return 0, nil
	}

	if _, err := d.db.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(d.db, buf[:common.PageSize])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, err
	}
	return n, nil
}

func (d *FileDiskManager) writePhysicalLocked(phys int64, buf []byte) error {
	offset := phys * common.PageSize
	if _, err := d.db.Seek(offset, io.SeekStart); err != nil {
		common.Log.Warn("disk: seek failed", zap.Int64("physical_page", phys), zap.Error(err))
		return err
	}
	n, err := d.db.Write(buf[:common.PageSize])
	if err != nil {
		common.Log.Warn("disk: write failed", zap.Int64("physical_page", phys), zap.Error(err))
		return err
	}
	if n != common.PageSize {
		common.Log.Warn("disk: short write", zap.Int("bytes_written", n))
	}
	if err := d.db.Sync(); err != nil {
		common.Log.Warn("disk: sync failed", zap.Error(err))
	}
	return nil
}

// bitmapPhysicalID returns the physical page id of extent e's bitmap.
func bitmapPhysicalID(extent uint32) int64 {
	return 1 + int64(extent)*(int64(common.SlotsPerExtent)+1)
}

// dataPhysicalID maps a logical id to its physical page id, per the
// extent layout in spec §3: group = L/M, off = L%M,
// physical = group*(M+1) + off + 2.
func (d *FileDiskManager) dataPhysicalID(logical types.PageID) int64 {
	l := int64(logical)
	m := int64(common.SlotsPerExtent)
	group := l / m
	off := l % m
	return group*(m+1) + off + 2
}

func (d *FileDiskManager) readBitmap(extent uint32) *BitmapPage {
	buf := make([]byte, common.PageSize)
	d.readPhysical(bitmapPhysicalID(extent), buf)
	return DeserializeBitmapPage(buf)
}

func (d *FileDiskManager) writeBitmapLocked(extent uint32, b *BitmapPage) {
	buf := b.Serialize()
	if err := d.writePhysicalLocked(bitmapPhysicalID(extent), buf[:]); err != nil {
		common.Log.Warn("disk: bitmap write failed", zap.Uint32("extent", extent), zap.Error(err))
	}
}

// AllocatePage scans existing extents for room, falling back to a new
// extent, per spec §4.B.
func (d *FileDiskManager) AllocatePage() types.PageID {
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
		d.writeMetaLocked()
		return types.PageID(e*common.SlotsPerExtent + offset)
	}

	newExtent := d.meta.numExtents
	d.meta.numExtents++
	d.meta.growTo(d.meta.numExtents)

	bitmap := NewBitmapPage()
	offset, ok := bitmap.Allocate()
	common.Assert(ok, "disk: allocate on a fresh bitmap must succeed")

	d.writeBitmapLocked(newExtent, bitmap)
	d.meta.extentUsedPage[newExtent] = 1
	d.meta.numAllocatedPages++
	d.writeMetaLocked()

	return types.PageID(newExtent*common.SlotsPerExtent + offset)
}

// DeallocatePage frees logical, a no-op for negative ids or ids beyond
// the current extent count (spec §4.B and its Open Question about
// preserving this early-return behavior).
func (d *FileDiskManager) DeallocatePage(logical types.PageID) {
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
		common.Log.Debug("disk: deallocate of already-free page ignored", zap.Int32("page_id", int32(logical)))
		return
	}
	d.meta.extentUsedPage[extent]--
	d.meta.numAllocatedPages--
	d.writeBitmapLocked(extent, bitmap)
	d.writeMetaLocked()
}

// IsPageFree reports whether logical has no current allocation.
func (d *FileDiskManager) IsPageFree(logical types.PageID) bool {
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

// Size returns the current size, in bytes, of the backing file.
func (d *FileDiskManager) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	info, err := d.db.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// RemoveDBFile deletes the backing file. Must be called after Close.
func (d *FileDiskManager) RemoveDBFile() {
	if err := os.Remove(d.path); err != nil {
		common.Log.Warn("disk: remove failed", zap.String("path", d.path), zap.Error(err))
	}
}
