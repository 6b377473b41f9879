// Package mountpoints parses the operating system's mount table and
// classifies each entry so the scanner can apply mount-boundary policy
// without re-deriving it for every directory it crosses.
package mountpoints

import "strings"

// systemMountPaths are well-known pseudo-filesystem mount points that never
// hold user data worth scanning.
var systemMountPaths = map[string]bool{
	"/dev":  true,
	"/proc": true,
	"/sys":  true,
	"/run":  true,
}

// MountPoint describes a single entry from /proc/mounts or /etc/mtab.
type MountPoint struct {
	// Device is the mounted device or source, e.g. "/dev/sda3",
	// "nas:/share/work", or a pseudo-device name like "tmpfs".
	Device string
	// Path is the absolute path the device is mounted at.
	Path string
	// FilesystemType is the filesystem type string, e.g. "ext4", "btrfs".
	FilesystemType string
	// Options holds the individual mount options, e.g. ["rw", "relatime"].
	Options []string

	// isDuplicate is set while the table is being read, if this mount
	// point's path was already seen (bind mount or re-mount).
	isDuplicate bool
}

// OptionsString returns the mount options as one comma-separated string.
func (m *MountPoint) OptionsString() string {
	return strings.Join(m.Options, ",")
}

// IsBtrfs reports whether this mount point's filesystem type is "btrfs".
func (m *MountPoint) IsBtrfs() bool {
	return m.FilesystemType == "btrfs"
}

// IsDuplicate reports whether this is a bind mount or a filesystem mounted
// more than once, determined while the mount table was read.
func (m *MountPoint) IsDuplicate() bool {
	return m.isDuplicate
}

// IsSystemMount reports whether this is one of the well-known system mount
// points (/dev, /proc, /sys, /run) or the device name does not start with a
// slash (tmpfs, cgroup, sysfs, and similar pseudo-filesystems).
func (m *MountPoint) IsSystemMount() bool {
	if systemMountPaths[m.Path] {
		return true
	}
	return !strings.HasPrefix(m.Device, "/")
}

// IsNetworkMount reports whether the filesystem type is a well-known network
// filesystem.
func (m *MountPoint) IsNetworkMount() bool {
	switch m.FilesystemType {
	case "nfs", "nfs4", "cifs", "smbfs", "smb3", "fuse.sshfs", "afs":
		return true
	default:
		return false
	}
}

// IsAutofs reports whether this mount point is managed by the automounter
// and therefore might not be populated yet.
func (m *MountPoint) IsAutofs() bool {
	return m.FilesystemType == "autofs"
}
