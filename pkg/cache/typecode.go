package cache

import (
	"strings"

	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
)

// typeCode maps a node's mode to the cache format's type code.
func typeCode(mode filesystem.Mode) string {
	switch mode.Type() {
	case filesystem.ModeTypeDirectory:
		return "D"
	case filesystem.ModeTypeSymbolicLink:
		return "L"
	case filesystem.ModeTypeBlockDevice:
		return "BlockDev"
	case filesystem.ModeTypeCharacterDevice:
		return "CharDev"
	case filesystem.ModeTypeFIFO:
		return "FIFO"
	case filesystem.ModeTypeSocket:
		return "Socket"
	default:
		return "F"
	}
}

// modeFromTypeCode reverses typeCode, combined with the permission bits
// decoded separately. An unrecognized code is treated as a regular file, as
// the original reader does.
func modeFromTypeCode(code string) filesystem.Mode {
	switch strings.ToUpper(code) {
	case "D":
		return filesystem.ModeTypeDirectory
	case "L":
		return filesystem.ModeTypeSymbolicLink
	case "BLOCKDEV":
		return filesystem.ModeTypeBlockDevice
	case "CHARDEV":
		return filesystem.ModeTypeCharacterDevice
	case "FIFO":
		return filesystem.ModeTypeFIFO
	case "SOCKET":
		return filesystem.ModeTypeSocket
	default:
		return filesystem.ModeTypeFile
	}
}

// isDirCode reports whether code names a directory entry.
func isDirCode(code string) bool {
	return strings.EqualFold(code, "D")
}
