//go:build unix

package fsmeta

import (
	"io/fs"
	"syscall"
)

// deviceAndInode extracts the raw device/inode pair backing info, when the
// platform's io/fs.FileInfo.Sys() exposes a *syscall.Stat_t (true on every
// unix target Go supports). This is a thin syscall-struct field read, not a
// filesystem operation in its own right, so it stays on the standard library
// rather than reaching for a third-party stat wrapper.
func deviceAndInode(info fs.FileInfo) (deviceID, inode uint64) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return uint64(stat.Dev), uint64(stat.Ino) //nolint:unconvert // Dev/Ino width varies by arch
}
