//go:build linux

package filesystem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Format identifies a filesystem's on-disk format, used to distinguish
// genuine network filesystems (NFS, CIFS, FUSE) from local ones when
// classifying a mount point (see MountPoints §6).
type Format uint8

const (
	// FormatUnknown indicates a filesystem format that wasn't recognized.
	FormatUnknown Format = iota
	// FormatLocal represents a conventional local-disk filesystem
	// (ext2/3/4, xfs, btrfs, and similar).
	FormatLocal
	// FormatNetwork represents a network filesystem (NFS, CIFS, FUSE).
	FormatNetwork
)

// QueryFormatByPath queries the filesystem format for the specified path
// using statfs(2).
func QueryFormatByPath(path string) (Format, error) {
	var metadata unix.Statfs_t
	if err := unix.Statfs(path, &metadata); err != nil {
		return FormatUnknown, errors.Wrap(err, "unable to query filesystem metadata")
	}
	return formatFromStatfs(&metadata), nil
}

// formatFromStatfs classifies a filesystem from its statfs(2) magic number.
func formatFromStatfs(metadata *unix.Statfs_t) Format {
	switch uint32(metadata.Type) {
	case unix.EXT4_SUPER_MAGIC, unix.XFS_SUPER_MAGIC, unix.BTRFS_SUPER_MAGIC,
		unix.TMPFS_MAGIC:
		return FormatLocal
	case unix.NFS_SUPER_MAGIC, unix.CIFS_SUPER_MAGIC, unix.FUSE_SUPER_MAGIC:
		return FormatNetwork
	default:
		return FormatUnknown
	}
}
