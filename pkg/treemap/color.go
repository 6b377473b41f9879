package treemap

import (
	"path/filepath"
	"strings"

	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// Color is a plain RGB triple, independent of any particular rendering
// target (ANSI 256-color, true color, or an image buffer); a renderer
// converts it to whatever its output needs.
type Color struct {
	R, G, B uint8
}

// DirColor is the fixed base color for Dir (and DotEntry/Pkg) tiles.
var DirColor = Color{R: 59, G: 130, B: 201} // steel blue, the teacher's log-level info color family

// defaultFileColor is used for any extension not found in extensionColors.
var defaultFileColor = Color{R: 148, G: 148, B: 148} // neutral gray

// extensionColors maps a lowercased file extension (without the leading
// dot) to its treemap tile color. This is the same "classify by filename
// extension" rule the spec calls for; the table itself is a reasonable
// compile-time default, not something a user is expected to need to tune.
var extensionColors = map[string]Color{
	"jpg":  {230, 126, 34}, "jpeg": {230, 126, 34}, "png": {230, 126, 34}, "gif": {230, 126, 34},
	"mp4": {155, 89, 182}, "mkv": {155, 89, 182}, "avi": {155, 89, 182}, "mov": {155, 89, 182},
	"mp3": {46, 204, 113}, "flac": {46, 204, 113}, "wav": {46, 204, 113}, "ogg": {46, 204, 113},
	"zip": {241, 196, 15}, "tar": {241, 196, 15}, "gz": {241, 196, 15}, "xz": {241, 196, 15}, "7z": {241, 196, 15},
	"go": {0, 173, 216}, "c": {0, 173, 216}, "cpp": {0, 173, 216}, "h": {0, 173, 216}, "py": {0, 173, 216}, "rs": {0, 173, 216}, "js": {0, 173, 216}, "ts": {0, 173, 216},
	"log": {192, 57, 43}, "tmp": {192, 57, 43}, "bak": {192, 57, 43},
	"pdf": {231, 76, 60}, "doc": {231, 76, 60}, "docx": {231, 76, 60},
}

// baseColor selects node's base tile color: directory-like nodes get
// DirColor, files are classified by extension.
func baseColor(node *tree.Node) Color {
	if node == nil {
		return defaultFileColor
	}
	if node.Kind().IsDirLike() {
		return DirColor
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(node.Name()), "."))
	if c, ok := extensionColors[ext]; ok {
		return c
	}
	return defaultFileColor
}
