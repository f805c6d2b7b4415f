// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"os"
)

// TestDiskManager wraps a FileDiskManager backed by a throwaway temp
// file, removing the file once the test closes it.
type TestDiskManager struct {
	path string
	*FileDiskManager
}

// NewTestDiskManager returns a DiskManager over a fresh temp file.
func NewTestDiskManager() *TestDiskManager {
	f, err := os.CreateTemp("", "pagestore.*.db")
	if err != nil {
		panic(err)
	}
	path := f.Name()
	f.Close()
	os.Remove(path)

	return &TestDiskManager{path: path, FileDiskManager: OpenDisk(path)}
}

// Close closes the backing file and removes it from disk.
func (d *TestDiskManager) Close() {
	defer os.Remove(d.path)
	d.FileDiskManager.Close()
}
