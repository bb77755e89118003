//go:build !unix

package fsmeta

import "io/fs"

// deviceAndInode has no portable equivalent outside unix (Windows file IDs
// require a separate, handle-based syscall this package does not open). Any
// FileMeta built on these platforms is indistinguishable from "absent" by
// the DeviceID/Inode sentinel alone; callers that need deletion detection on
// such platforms rely on the directory-level reconciliation (a name simply
// stops appearing in the listing) rather than the sentinel.
func deviceAndInode(info fs.FileInfo) (deviceID, inode uint64) {
	return 0, 0
}
