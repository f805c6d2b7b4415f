// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

// PageSize is the size, in bytes, of every page the disk manager and
// buffer pool manager move around. Build-time constant: page-size
// negotiation and variable-size pages are explicit non-goals.
const PageSize = 4096

// InvalidPageID is the sentinel logical page id meaning "no page".
const InvalidPageID = -1

// InvalidFrameID is the sentinel frame id meaning "no frame".
const InvalidFrameID = -1

// MetaPageID is the physical page id of the disk manager's meta page.
const MetaPageID = 0

// BitmapHeaderSize is the size, in bytes, of a bitmap page's header
// (page_allocated uint32 + next_free_page uint32).
const BitmapHeaderSize = 8

// MaxChars is the number of bytes of bit storage in a bitmap page's body.
const MaxChars = PageSize - BitmapHeaderSize

// SlotsPerExtent (M in the spec) is the maximum number of data page
// slots a single bitmap page can track.
const SlotsPerExtent = MaxChars * 8

// DefaultBufferPoolSize mirrors the pool size used throughout the
// teacher's own test suite (BufferPoolMaxFrameNumForTest).
const DefaultBufferPoolSize = 10
