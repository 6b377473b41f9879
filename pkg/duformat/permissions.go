package duformat

import (
	"fmt"

	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
)

// typeLetter maps a mode's type bits to the single letter "ls -l" uses in
// the leftmost column of a symbolic permission string.
func typeLetter(mode filesystem.Mode) byte {
	switch mode.Type() {
	case filesystem.ModeTypeDirectory:
		return 'd'
	case filesystem.ModeTypeSymbolicLink:
		return 'l'
	case filesystem.ModeTypeBlockDevice:
		return 'b'
	case filesystem.ModeTypeCharacterDevice:
		return 'c'
	case filesystem.ModeTypeFIFO:
		return 'p'
	case filesystem.ModeTypeSocket:
		return 's'
	default:
		return '-'
	}
}

// SymbolicMode formats mode like "ls -l" does, e.g. "drwxr-xr-x". If
// omitTypeForRegularFiles is set, a regular file's leading "-" is replaced
// with a space instead, matching the legacy detail-panel rendering.
func SymbolicMode(mode filesystem.Mode, omitTypeForRegularFiles bool) string {
	letter := typeLetter(mode)
	if omitTypeForRegularFiles && mode.IsRegular() {
		letter = ' '
	}

	bits := [9]byte{'-', '-', '-', '-', '-', '-', '-', '-', '-'}
	perm := mode.Permissions()

	type bit struct {
		mask  filesystem.Mode
		index int
		char  byte
	}
	table := []bit{
		{filesystem.ModePermissionUserRead, 0, 'r'},
		{filesystem.ModePermissionUserWrite, 1, 'w'},
		{filesystem.ModePermissionUserExecute, 2, 'x'},
		{filesystem.ModePermissionGroupRead, 3, 'r'},
		{filesystem.ModePermissionGroupWrite, 4, 'w'},
		{filesystem.ModePermissionGroupExecute, 5, 'x'},
		{filesystem.ModePermissionOthersRead, 6, 'r'},
		{filesystem.ModePermissionOthersWrite, 7, 'w'},
		{filesystem.ModePermissionOthersExecute, 8, 'x'},
	}
	for _, b := range table {
		if perm&b.mask != 0 {
			bits[b.index] = b.char
		}
	}

	return string(letter) + string(bits[:])
}

// Octal formats a mode's permission bits in the traditional octal notation
// with a leading zero, e.g. "0755".
func Octal(mode filesystem.Mode) string {
	return fmt.Sprintf("0%o", uint32(mode.Permissions()))
}

// Permissions formats a mode in the combined symbolic-and-octal form QDirStat
// uses in its file details panel, e.g. "drwxr-xr-x  0755".
func Permissions(mode filesystem.Mode) string {
	return fmt.Sprintf("%s  %s", SymbolicMode(mode, false), Octal(mode))
}

// FilesystemObjectType names the object type a mode represents, e.g.
// "Directory", "Symbolic Link", "Block Device", "File".
func FilesystemObjectType(mode filesystem.Mode) string {
	switch mode.Type() {
	case filesystem.ModeTypeDirectory:
		return "Directory"
	case filesystem.ModeTypeSymbolicLink:
		return "Symbolic Link"
	case filesystem.ModeTypeBlockDevice:
		return "Block Device"
	case filesystem.ModeTypeCharacterDevice:
		return "Character Device"
	case filesystem.ModeTypeFIFO:
		return "FIFO"
	case filesystem.ModeTypeSocket:
		return "Socket"
	case filesystem.ModeTypeFile:
		return "File"
	default:
		return "Unknown"
	}
}
