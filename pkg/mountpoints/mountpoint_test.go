package mountpoints

import "testing"

func TestIsSystemMountByPath(t *testing.T) {
	mp := &MountPoint{Device: "/dev/sda1", Path: "/proc", FilesystemType: "proc"}
	if !mp.IsSystemMount() {
		t.Error("/proc should be classified as a system mount")
	}
}

func TestIsSystemMountByDeviceName(t *testing.T) {
	mp := &MountPoint{Device: "tmpfs", Path: "/tmp", FilesystemType: "tmpfs"}
	if !mp.IsSystemMount() {
		t.Error("a tmpfs device name should be classified as a system mount")
	}
}

func TestIsNotSystemMount(t *testing.T) {
	mp := &MountPoint{Device: "/dev/sda3", Path: "/home", FilesystemType: "ext4"}
	if mp.IsSystemMount() {
		t.Error("/dev/sda3 at /home should not be classified as a system mount")
	}
}

func TestIsBtrfs(t *testing.T) {
	mp := &MountPoint{Device: "/dev/sda2", Path: "/", FilesystemType: "btrfs"}
	if !mp.IsBtrfs() {
		t.Error("expected IsBtrfs to be true for filesystem type btrfs")
	}
}

func TestIsNetworkMount(t *testing.T) {
	cases := []struct {
		fsType  string
		network bool
	}{
		{"nfs", true},
		{"nfs4", true},
		{"cifs", true},
		{"ext4", false},
		{"btrfs", false},
	}
	for _, c := range cases {
		mp := &MountPoint{FilesystemType: c.fsType}
		if mp.IsNetworkMount() != c.network {
			t.Errorf("IsNetworkMount() for %q = %v, want %v", c.fsType, mp.IsNetworkMount(), c.network)
		}
	}
}

func TestOptionsString(t *testing.T) {
	mp := &MountPoint{Options: []string{"rw", "relatime", "nosuid"}}
	if got, want := mp.OptionsString(), "rw,relatime,nosuid"; got != want {
		t.Errorf("OptionsString() = %q, want %q", got, want)
	}
}
