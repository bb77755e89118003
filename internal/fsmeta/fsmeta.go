// Package fsmeta builds the metadata snapshot type shared by both watcher
// engines from os.FileInfo, and defines the "absent" sentinel check used to
// interpret a synthetic zero-stat as "this path does not exist".
package fsmeta

import "time"

// Kind classifies a file system entry.
type Kind int

const (
	File Kind = iota
	Directory
	Other
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "other"
	}
}

// Meta is an immutable metadata snapshot for one path. Two Metas with both
// DeviceID and Inode equal to zero are both considered "absent", which lets
// platforms that report a synthetic zero-stat on deletion participate in the
// same Prev/Curr reconciliation tables as platforms with real device/inode
// pairs.
type Meta struct {
	Size     int64
	MTime    time.Time
	Kind     Kind
	DeviceID uint64
	Inode    uint64
}

// Absent reports whether m represents "no such file": DeviceID == 0 &&
// Inode == 0, the zero-value sentinel no real file produces on unix. On
// other platforms every Meta has a zero pair (see fsmeta_other.go), so
// Absent reports true there for real files as well.
func (m Meta) Absent() bool {
	return m.DeviceID == 0 && m.Inode == 0
}

// Equal reports whether two metadata snapshots are equivalent for the
// purposes of deciding whether a "change" event is warranted. Directories
// are compared only by presence/kind — mtime churn on a directory is never
// itself a reportable change (see watch package reconciliation table).
func (m Meta) Equal(other Meta) bool {
	if m.Kind != other.Kind {
		return false
	}
	if m.Kind == Directory {
		return true
	}
	return m.Size == other.Size && m.MTime.Equal(other.MTime)
}

// ZeroMeta is the canonical "absent" snapshot.
var ZeroMeta = Meta{}
