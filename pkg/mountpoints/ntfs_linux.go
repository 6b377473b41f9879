//go:build linux

package mountpoints

import (
	"bufio"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ntfsDevices queries lsblk for the set of block devices formatted with
// NTFS. The kernel usually reports an NTFS mount's filesystem type as
// "fuseblk" via ntfs-3g, which is indistinguishable from other FUSE-backed
// block filesystems without this extra lookup.
func ntfsDevices() (map[string]bool, error) {
	cmd := exec.Command("lsblk", "--list", "--noheading", "--output", "name,fstype")
	output, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "unable to run lsblk")
	}

	devices := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		if strings.EqualFold(fields[1], "ntfs") {
			devices["/dev/"+fields[0]] = true
		}
	}
	return devices, nil
}

// resolveNTFS reclassifies any "fuseblk" mount point whose device lsblk
// reports as NTFS-formatted, setting its FilesystemType to "ntfs" so later
// classification (e.g. IsNetworkMount) doesn't need to know about ntfs-3g's
// fuseblk indirection.
func (t *Table) resolveNTFS() {
	if t.ntfsProbed {
		return
	}
	t.ntfsProbed = true

	devices, err := ntfsDevices()
	if err != nil {
		t.logger.Debugf("unable to probe NTFS devices: %v", err)
		return
	}
	for _, mp := range t.byPath {
		if mp.FilesystemType == "fuseblk" && devices[mp.Device] {
			mp.FilesystemType = "ntfs"
		}
	}
}
