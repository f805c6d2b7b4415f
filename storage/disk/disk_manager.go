// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"github.com/dbcore/pagestore/types"
)

// DiskManager owns a single backing file and presents a dense logical
// page-id space over it, using bitmap pages (see BitmapPage) for
// free-space tracking within extents. It is the only component that
// knows the mapping between logical and physical page ids (spec §3).
type DiskManager interface {
	// ReadPage reads PageSize bytes for logical into buf. Bytes past
	// EOF are returned as zero and are not an error.
	ReadPage(logical types.PageID, buf []byte) error
	// WritePage writes PageSize bytes of buf for logical, extending the
	// file as needed. I/O errors are logged, not propagated (spec §7);
	// the returned error is informational only.
	WritePage(logical types.PageID, buf []byte) error
	// AllocatePage reserves the next free logical id and returns it.
	AllocatePage() types.PageID
	// DeallocatePage frees logical for reuse. No-op for ids that are
	// already free, negative, or past the file's current extent count.
	DeallocatePage(logical types.PageID)
	// IsPageFree reports whether logical currently has no allocation.
	IsPageFree(logical types.PageID) bool
	// Size returns the current size, in bytes, of the backing file.
	Size() int64
	// Close flushes the meta page and closes the backing file. Safe to
	// call more than once.
	Close()
}
