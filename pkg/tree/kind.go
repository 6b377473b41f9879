// Package tree implements the in-memory, hierarchical, lazily-summarized
// representation of a scanned filesystem: the node types, their invariants,
// parent/child links, cached aggregate sums, and the change-notification
// registry an external viewer observes.
package tree

// Kind identifies which of the six node variants a Node represents. The
// historical implementation used a seven-class inheritance hierarchy with
// virtual dispatch; here a single Node struct carries a Kind tag and the
// handful of genuinely variant operations switch on it.
type Kind uint8

const (
	// KindRoot is the invisible pseudo-root owned by a Tree, permitting
	// multiple visible top-level nodes.
	KindRoot Kind = iota
	// KindDir is an ordinary directory.
	KindDir
	// KindDotEntry is a pseudo-directory collecting the direct file
	// children of its parent Dir.
	KindDotEntry
	// KindAttic is a pseudo-directory holding ignored children, excluded
	// from its parent's aggregate sums.
	KindAttic
	// KindPkg is a synthetic grouping node for a software package.
	KindPkg
	// KindFile is a non-directory: regular file, symlink, block/char
	// device, FIFO, or socket. The specific filesystem type is carried in
	// the node's Mode.
	KindFile
)

// String returns a human-readable name for the kind, used in log output and
// error messages.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindDir:
		return "dir"
	case KindDotEntry:
		return "dot-entry"
	case KindAttic:
		return "attic"
	case KindPkg:
		return "pkg"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// IsDirLike reports whether nodes of this kind may hold children (Dir,
// DotEntry, Attic, Pkg, Root). This does not imply that all of them may hold
// the same kind of children — see Node's insertion invariants.
func (k Kind) IsDirLike() bool {
	switch k {
	case KindDir, KindDotEntry, KindAttic, KindPkg, KindRoot:
		return true
	default:
		return false
	}
}

// dotEntryName is the pseudo path component used to address a Dir's DotEntry
// explicitly in a locate() URL.
const dotEntryName = "<Files>"

// atticName is the pseudo path component used to address a Dir's Attic
// explicitly in a locate() URL.
const atticName = "<Ignored>"
