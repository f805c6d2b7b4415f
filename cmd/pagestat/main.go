// pagestat is a small inspector binary over a page store file. It is an
// external collaborator of the core packages, not part of them, in the
// same vein as main/main.go driving the library for a debugging
// purpose; SIGINT handling follows
// server/signal_handle/signal_handler.go's block-until-signal shape.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dbcore/pagestore/common"
	"github.com/dbcore/pagestore/storage/buffer"
	"github.com/dbcore/pagestore/storage/disk"
)

func main() {
	path := flag.String("db", "", "path to a page store database file")
	poolSize := flag.Uint("pool-size", 16, "buffer pool frames to report stats for")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: pagestat -db <path>")
		os.Exit(2)
	}

	dm := disk.OpenDisk(*path)
	bpm := buffer.NewBufferPoolManager(uint32(*poolSize), dm)

	printSnapshot(*path, dm, bpm)

	sigChan := make(chan os.Signal, 1)
	signal.Ignore()
	signal.Notify(sigChan, syscall.SIGINT)
	fmt.Println("pagestat: watching; press ctrl-c to flush and exit")
	<-sigChan

	bpm.FlushAllPages()
	dm.Close()
	common.Log.Info("pagestat: shut down cleanly", zap.String("path", *path))
}

func printSnapshot(path string, dm disk.DiskManager, bpm *buffer.BufferPoolManager) {
	stats := bpm.Stats()
	fmt.Printf("db file: %s\n", path)
	fmt.Printf("file size: %d bytes\n", dm.Size())
	fmt.Printf("pool size: %d  resident: %d  free frames: %d  evictable: %d\n",
		stats.PoolSize, stats.ResidentPages, stats.FreeFrames, stats.EvictableFrames)
	fmt.Printf("process rss: %d bytes\n", stats.ProcessRSSBytes)
}
