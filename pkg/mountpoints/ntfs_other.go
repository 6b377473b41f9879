//go:build !linux

package mountpoints

// resolveNTFS is a no-op on platforms where lsblk-based NTFS detection does
// not apply.
func (t *Table) resolveNTFS() {
	t.ntfsProbed = true
}
