package disk

import (
	"testing"

	"github.com/dbcore/pagestore/common"
	"github.com/dbcore/pagestore/internal/testutil"
	"github.com/dbcore/pagestore/types"
)

func TestReadWritePage(t *testing.T) {
	dm := NewTestDiskManager()
	defer dm.Close()

	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)
	copy(data, "A test string.")

	id := dm.AllocatePage()
	dm.ReadPage(id, buffer) // allocated but never written: all zero
	testutil.Equals(t, make([]byte, common.PageSize), buffer)

	testutil.Ok(t, dm.WritePage(id, data))
	testutil.Ok(t, dm.ReadPage(id, buffer))
	testutil.Equals(t, data, buffer)
}

func TestReadPastEOFZeroFills(t *testing.T) {
	dm := NewTestDiskManager()
	defer dm.Close()

	buffer := make([]byte, common.PageSize)
	for i := range buffer {
		buffer[i] = 0xFF
	}
	dm.ReadPage(types.PageID(0), buffer)
	for _, b := range buffer {
		if b != 0 {
			t.Fatalf("expected zero-filled read past EOF, got byte %d", b)
		}
	}
}

func TestAllocateDeallocateIsFree(t *testing.T) {
	dm := NewTestDiskManager()
	defer dm.Close()

	id := dm.AllocatePage()
	if dm.IsPageFree(id) {
		t.Fatalf("page %d should be allocated", id)
	}

	dm.DeallocatePage(id)
	if !dm.IsPageFree(id) {
		t.Fatalf("page %d should be free after deallocate", id)
	}

	// double free is a silent no-op
	dm.DeallocatePage(id)
	if !dm.IsPageFree(id) {
		t.Fatalf("page %d should still be free after double deallocate", id)
	}
}

func TestDeallocateNegativeAndOutOfRangeAreNoOps(t *testing.T) {
	dm := NewTestDiskManager()
	defer dm.Close()

	dm.DeallocatePage(types.PageID(-1))
	dm.DeallocatePage(types.PageID(999999))

	if !dm.IsPageFree(types.PageID(-1)) {
		t.Fatalf("negative page id should report free")
	}
}

func TestAllocateReusesFreedSlotBeforeNewExtent(t *testing.T) {
	dm := NewTestDiskManager()
	defer dm.Close()

	first := dm.AllocatePage()
	dm.DeallocatePage(first)
	second := dm.AllocatePage()

	if second != first {
		t.Fatalf("expected freed slot %d to be reused, got %d", first, second)
	}
}

func TestAllocateCrossesExtentBoundary(t *testing.T) {
	dm := NewTestDiskManager()
	defer dm.Close()

	var ids []types.PageID
	for i := uint32(0); i < common.SlotsPerExtent; i++ {
		ids = append(ids, dm.AllocatePage())
	}
	for i, id := range ids {
		if int(id) != i {
			t.Fatalf("expected sequential ids filling extent 0, got %d at index %d", id, i)
		}
	}

	rollover := dm.AllocatePage()
	if int(rollover) != int(common.SlotsPerExtent) {
		t.Fatalf("expected first page of extent 1 to be logical id %d, got %d", common.SlotsPerExtent, rollover)
	}
}

func TestMemDiskManagerMirrorsFileDiskManager(t *testing.T) {
	dm := NewMemDiskManager()

	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)
	copy(data, "in-memory disk manager")

	id := dm.AllocatePage()
	dm.WritePage(id, data)
	dm.ReadPage(id, buffer)
	if string(buffer[:len(data)]) != string(data) {
		t.Fatalf("read back %q, want %q", buffer[:len(data)], data)
	}

	dm.DeallocatePage(id)
	if !dm.IsPageFree(id) {
		t.Fatalf("page %d should be free after deallocate", id)
	}
}

func TestMemDiskManagerCrossesExtentBoundary(t *testing.T) {
	dm := NewMemDiskManager()

	for i := uint32(0); i < common.SlotsPerExtent; i++ {
		if id := dm.AllocatePage(); int(id) != int(i) {
			t.Fatalf("expected sequential id %d, got %d", i, id)
		}
	}
	rollover := dm.AllocatePage()
	if int(rollover) != int(common.SlotsPerExtent) {
		t.Fatalf("expected rollover id %d, got %d", common.SlotsPerExtent, rollover)
	}
}
