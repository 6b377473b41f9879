package mountpoints

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/qdirstat-go/qdirstat/pkg/logging"
)

// procMountsPath and etcMtabPath are the conventional locations of the
// kernel-maintained and userspace-maintained mount tables, tried in that
// order by Table.Populate.
const (
	procMountsPath = "/proc/mounts"
	etcMtabPath    = "/etc/mtab"
)

// Table is the set of mount points currently known to the system. It is
// populated once (lazily or explicitly) and should be discarded and
// re-populated if the caller suspects the mount table has changed, e.g.
// after a long-running scan.
type Table struct {
	logger *logging.Logger

	byPath     map[string]*MountPoint
	populated  bool
	hasBtrfs   bool
	ntfsProbed bool
}

// NewTable creates an empty, unpopulated mount table.
func NewTable(logger *logging.Logger) *Table {
	return &Table{
		logger: logger.Sublogger("mountpoints"),
		byPath: make(map[string]*MountPoint),
	}
}

// Populate ensures the table holds the current content of /proc/mounts,
// falling back to /etc/mtab if /proc/mounts cannot be read. It is a no-op if
// the table has already been populated; call Clear first to force a re-read.
func (t *Table) Populate() error {
	if t.populated {
		return nil
	}
	if err := t.read(procMountsPath); err == nil {
		t.populated = true
		t.resolveNTFS()
		return nil
	}
	if err := t.read(etcMtabPath); err != nil {
		return errors.Wrap(err, "unable to read mount table from either source")
	}
	t.populated = true
	t.resolveNTFS()
	return nil
}

// Clear discards the current table content, forcing the next Populate call
// to re-read the mount table from disk.
func (t *Table) Clear() {
	t.byPath = make(map[string]*MountPoint)
	t.populated = false
	t.hasBtrfs = false
	t.ntfsProbed = false
}

// IsEmpty reports whether there are no known mount points.
func (t *Table) IsEmpty() bool {
	return len(t.byPath) == 0
}

// FindByPath returns the mount point registered for exactly this path, or
// nil if there is none.
func (t *Table) FindByPath(path string) *MountPoint {
	return t.byPath[filepath.Clean(path)]
}

// FindNearestMountPoint walks upward from path until it finds a registered
// mount point, returning nil if neither path nor any of its ancestors is
// registered.
func (t *Table) FindNearestMountPoint(path string) *MountPoint {
	path = filepath.Clean(path)
	for {
		if mp, ok := t.byPath[path]; ok {
			return mp
		}
		parent := filepath.Dir(path)
		if parent == path {
			return nil
		}
		path = parent
	}
}

// HasBtrfs reports whether any known mount point has filesystem type
// "btrfs". Btrfs subvolumes can make a single physical device appear at
// multiple mount points without a corresponding device id change, which the
// scanner's ordinary mount-boundary check would otherwise miss.
func (t *Table) HasBtrfs() bool {
	return t.hasBtrfs
}

// read parses filename (expected to be in /proc/mounts syntax) and merges
// its content into the table, marking re-mounts and bind mounts of an
// already-registered path as duplicates.
func (t *Table) read(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", filename)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}
		mp, err := parseLine(line)
		if err != nil {
			t.logger.Warnf("%s:%d: %v", filename, lineNumber, err)
			continue
		}
		if existing, ok := t.byPath[mp.Path]; ok {
			existing.isDuplicate = true
			mp.isDuplicate = true
		}
		t.byPath[mp.Path] = mp
		if mp.IsBtrfs() {
			t.hasBtrfs = true
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "error scanning %s", filename)
	}
	return nil
}

// parseLine parses one whitespace-separated line of /proc/mounts syntax:
// "device path fstype options dump fsck", with embedded spaces in path
// escaped as \040.
func parseLine(line string) (*MountPoint, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, errors.Errorf("malformed mount table line: %q", line)
	}
	return &MountPoint{
		Device:         unescapeMountField(fields[0]),
		Path:           unescapeMountField(fields[1]),
		FilesystemType: fields[2],
		Options:        strings.Split(fields[3], ","),
	}, nil
}

// unescapeMountField reverses the \NNN octal escaping that the kernel
// applies to whitespace and backslashes in /proc/mounts fields.
func unescapeMountField(field string) string {
	if !strings.Contains(field, "\\") {
		return field
	}
	var builder strings.Builder
	for i := 0; i < len(field); i++ {
		if field[i] == '\\' && i+3 < len(field) {
			if code, err := strconv.ParseInt(field[i+1:i+4], 8, 32); err == nil {
				builder.WriteByte(byte(code))
				i += 3
				continue
			}
		}
		builder.WriteByte(field[i])
	}
	return builder.String()
}
