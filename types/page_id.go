// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"bytes"
	"encoding/binary"

	"github.com/dbcore/pagestore/common"
)

// PageID is the type of the logical page identifier the engine above
// the buffer pool uses to refer to a page.
type PageID int32

// InvalidPageID represents "no page".
const InvalidPageID = PageID(common.InvalidPageID)

// IsValid reports whether id is a usable (non-negative) page id.
func (id PageID) IsValid() bool {
	return id != InvalidPageID && id >= 0
}

// Serialize casts the id to its 4-byte little-endian representation.
func (id PageID) Serialize() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, id)
	return buf.Bytes()
}

// NewPageIDFromBytes creates a page id from a 4-byte little-endian buffer.
func NewPageIDFromBytes(data []byte) (ret PageID) {
	binary.Read(bytes.NewBuffer(data), binary.LittleEndian, &ret)
	return ret
}
