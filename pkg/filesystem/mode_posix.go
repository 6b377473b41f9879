//go:build !windows

package filesystem

import (
	"golang.org/x/sys/unix"
)

// Mode is an opaque type representing a file mode. It is guaranteed to be
// convertible to a uint32 value. It is the raw underlying file mode from the
// POSIX stat_t structure (as opposed to the os package's FileMode), so type
// bits can be tested directly against the ModeType* constants below.
type Mode uint32

const (
	// ModeTypeMask is a bit mask that isolates type information from a Mode.
	// After masking, the resulting value can be compared with any of the
	// ModeType* values (other than ModeTypeMask itself).
	ModeTypeMask = Mode(unix.S_IFMT)
	// ModeTypeDirectory represents a directory.
	ModeTypeDirectory = Mode(unix.S_IFDIR)
	// ModeTypeFile represents a regular file.
	ModeTypeFile = Mode(unix.S_IFREG)
	// ModeTypeSymbolicLink represents a symbolic link.
	ModeTypeSymbolicLink = Mode(unix.S_IFLNK)
	// ModeTypeBlockDevice represents a block device.
	ModeTypeBlockDevice = Mode(unix.S_IFBLK)
	// ModeTypeCharacterDevice represents a character device.
	ModeTypeCharacterDevice = Mode(unix.S_IFCHR)
	// ModeTypeFIFO represents a named pipe.
	ModeTypeFIFO = Mode(unix.S_IFIFO)
	// ModeTypeSocket represents a UNIX domain socket.
	ModeTypeSocket = Mode(unix.S_IFSOCK)
)

// Type isolates the type bits of the mode.
func (m Mode) Type() Mode { return m & ModeTypeMask }

// Permissions isolates the portable rwxrwxrwx permission bits of the mode.
func (m Mode) Permissions() Mode { return m & ModePermissionsPortableMask }

// IsDir reports whether the mode represents a directory.
func (m Mode) IsDir() bool { return m.Type() == ModeTypeDirectory }

// IsRegular reports whether the mode represents a regular file.
func (m Mode) IsRegular() bool { return m.Type() == ModeTypeFile }

// IsSymbolicLink reports whether the mode represents a symbolic link.
func (m Mode) IsSymbolicLink() bool { return m.Type() == ModeTypeSymbolicLink }
