//go:build linux

package filesystem

import (
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// RawStat holds the fields of a POSIX stat_t that the disk-usage core cares
// about, extracted with a single lstat(2) call per entry so the scanner never
// stats the same path twice within a unit of work.
type RawStat struct {
	// Mode is the raw file mode, including type bits.
	Mode Mode
	// Size is the file size in bytes as reported by stat (the "apparent"
	// size, before sparse/hardlink adjustment).
	Size int64
	// Blocks is the number of 512-byte blocks allocated to the file.
	Blocks int64
	// Nlink is the hard link count.
	Nlink uint64
	// ModificationTime is the file's modification time.
	ModificationTime time.Time
	// UID is the owning user ID.
	UID uint32
	// GID is the owning group ID.
	GID uint32
	// Device is the device ID of the filesystem on which the entry resides.
	Device uint64
}

// Lstat performs an lstat(2) on path and extracts the fields relevant to the
// disk-usage core, without following a trailing symbolic link.
func Lstat(path string) (*RawStat, error) {
	var raw syscall.Stat_t
	if err := syscall.Lstat(path, &raw); err != nil {
		return nil, errors.Wrapf(err, "lstat %q", path)
	}
	return statFromRaw(&raw), nil
}
