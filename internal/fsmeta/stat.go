package fsmeta

import "io/fs"

// FromFileInfo builds a Meta from an os.Lstat/os.Stat result. Lstat is used
// throughout the watch/recursive packages: symlink traversal is out of
// scope, so a symlink is reported as whatever the OS metadata for the link
// itself says, never resolved.
func FromFileInfo(info fs.FileInfo) Meta {
	deviceID, inode := deviceAndInode(info)
	return Meta{
		Size:     info.Size(),
		MTime:    info.ModTime(),
		Kind:     kindOf(info),
		DeviceID: deviceID,
		Inode:    inode,
	}
}

func kindOf(info fs.FileInfo) Kind {
	switch {
	case info.IsDir():
		return Directory
	case info.Mode().IsRegular():
		return File
	default:
		return Other
	}
}
