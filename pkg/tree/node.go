package tree

import (
	"time"

	"github.com/qdirstat-go/qdirstat/pkg/duerrors"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/state"
)

// nodeMagicValid is written into every live Node's magic field at
// construction time. delete_subtree zeroes it before a node is unlinked, so
// any stale pointer an observer is still holding fails validity checks
// instead of reading freed-in-spirit data.
const nodeMagicValid uint32 = 0x51444952 // "QDIR"

// fragmentTolerance is the byte slack allowed between a regular file's
// allocated size and its apparent size before it is considered sparse. The
// original implementation measured 2048 bytes on ext4/xfs/btrfs.
const fragmentTolerance = 2048

// Node is the single tagged-union representation for every element of a
// scanned tree: File, Dir, DotEntry, Attic, Pkg, or Root. Not all fields are
// meaningful for all kinds; see the accessor methods for which kind each
// field applies to.
type Node struct {
	magic uint32
	kind  Kind

	// name is the path component only, except for a top-level Dir
	// (the Tree's immediate child of Root), whose name holds the
	// absolute path the scan was started from.
	name string

	parent *Node // weak reference; never owns

	// Stat-derived attributes, meaningful for File, Dir, and Pkg nodes.
	device    uint64
	mode      filesystem.Mode
	linkCount uint64
	byteSize  int64
	blocks    int64
	mtime     time.Time
	uid       uint32
	gid       uint32

	isMountPoint bool
	isExcluded   bool
	isIgnored    bool
	fromCache    bool

	touched state.Marker

	// Container fields, meaningful for Dir, DotEntry, Attic, Pkg, Root.
	children []*Node
	dotEntry *Node
	attic    *Node

	readState  ReadState
	aggregates Aggregates

	sortCache *sortCacheEntry
}

// newNode allocates a Node of the given kind with a valid magic number. It
// is the only constructor; all New* helpers below funnel through it.
func newNode(kind Kind, name string) *Node {
	return &Node{
		magic: nodeMagicValid,
		kind:  kind,
		name:  name,
	}
}

// NewRoot creates a new, empty Root node for a Tree.
func NewRoot() *Node {
	return newNode(KindRoot, "")
}

// NewDir creates a new Dir node from stat-derived attributes. The caller is
// responsible for inserting it into a tree via Tree.InsertChild.
func NewDir(name string, raw *filesystem.RawStat) *Node {
	n := newNode(KindDir, name)
	n.applyStat(raw)
	n.readState = ReadStateQueued
	// The Dir's totals start from its own contribution; InsertChild's
	// incremental updates add its descendants on top.
	n.aggregates = Aggregates{
		TotalSize:          n.EffectiveSize(),
		TotalAllocatedSize: n.AllocatedSize(),
		TotalBlocks:        n.blocks,
		LatestMtime:        n.mtime,
	}
	return n
}

// NewFile creates a new File node (regular file, symlink, device, FIFO, or
// socket — the specific type is carried in Mode) from stat-derived
// attributes.
func NewFile(name string, raw *filesystem.RawStat) *Node {
	n := newNode(KindFile, name)
	n.applyStat(raw)
	return n
}

// NewPkg creates a new synthetic package-grouping node.
func NewPkg(name string) *Node {
	return newNode(KindPkg, name)
}

// NewAttic creates a new, empty Attic node. The caller attaches it to a Dir
// via Node.SetAttic.
func NewAttic() *Node {
	return newNode(KindAttic, atticName)
}

// SetAttic attaches attic as this node's Attic, setting its parent
// back-pointer. Meaningful only for Dir-like nodes; a scanner calls this the
// first time it routes an excluded or filtered entry to the Attic.
func (n *Node) SetAttic(attic *Node) {
	n.attic = attic
	attic.parent = n
}

// applyStat copies the fields of a RawStat into the node.
func (n *Node) applyStat(raw *filesystem.RawStat) {
	n.device = raw.Device
	n.mode = raw.Mode
	n.linkCount = raw.Nlink
	n.byteSize = raw.Size
	n.blocks = raw.Blocks
	n.mtime = raw.ModificationTime
	n.uid = raw.UID
	n.gid = raw.GID
}

// Kind returns the node's variant tag.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the node's path component (or, for a top-level Dir, its
// absolute start path).
func (n *Node) Name() string { return n.name }

// Parent returns the node's parent, or nil for the Root.
func (n *Node) Parent() *Node { return n.parent }

// IsValid reports whether the node's magic number sentinel is intact. Every
// dereference of a Node obtained from outside the immediate call chain
// (e.g. one stored across an event loop tick) MUST check this first.
func (n *Node) IsValid() bool {
	return n != nil && n.magic == nodeMagicValid
}

// CheckValid returns duerrors.InvalidNode if the node's magic number has
// been invalidated (or the node is nil), and nil otherwise.
func (n *Node) CheckValid() error {
	if n.IsValid() {
		return nil
	}
	return &duerrors.InvalidNode{Path: n.bestEffortPath()}
}

// invalidate zeroes the magic number, marking the node as deleted. Called
// by delete_subtree before a node is unlinked from the tree.
func (n *Node) invalidate() {
	n.magic = 0
}

// bestEffortPath renders a path for a possibly-invalid node, for use only in
// error messages (a fully invalidated node may have a stale parent chain).
func (n *Node) bestEffortPath() string {
	if n == nil {
		return "<nil>"
	}
	return n.name
}

// IsDir reports whether the node is an ordinary directory.
func (n *Node) IsDir() bool { return n.kind == KindDir }

// IsMountPoint reports whether this Dir is the mount point of a different
// filesystem than its parent.
func (n *Node) IsMountPoint() bool { return n.isMountPoint }

// SetMountPoint flags or unflags the node as a mount point.
func (n *Node) SetMountPoint(v bool) { n.isMountPoint = v }

// IsExcluded reports whether this node was excluded by an exclude rule.
func (n *Node) IsExcluded() bool { return n.isExcluded }

// SetExcluded flags or unflags the node as excluded.
func (n *Node) SetExcluded(v bool) { n.isExcluded = v }

// IsIgnored reports whether this node was routed to an Attic by a filter.
func (n *Node) IsIgnored() bool { return n.isIgnored }

// SetIgnored flags or unflags the node as filter-ignored.
func (n *Node) SetIgnored(v bool) { n.isIgnored = v }

// FromCache reports whether this node was materialized from a cache file
// rather than a live filesystem read.
func (n *Node) FromCache() bool { return n.fromCache }

// SetFromCache flags or unflags the node as cache-derived.
func (n *Node) SetFromCache(v bool) { n.fromCache = v }

// Device returns the device id of the filesystem the node resides on.
func (n *Node) Device() uint64 { return n.device }

// Mode returns the node's raw POSIX mode bits.
func (n *Node) Mode() filesystem.Mode { return n.mode }

// LinkCount returns the node's hard link count.
func (n *Node) LinkCount() uint64 { return n.linkCount }

// ByteSize returns the node's apparent size, as reported by stat, before any
// sparse/hardlink adjustment. Use EffectiveSize for the accounted size.
func (n *Node) ByteSize() int64 { return n.byteSize }

// Blocks returns the node's 512-byte block count, as reported by stat.
func (n *Node) Blocks() int64 { return n.blocks }

// AllocatedSize returns the node's actual on-disk allocation, derived from
// its block count.
func (n *Node) AllocatedSize() int64 { return n.blocks * 512 }

// Mtime returns the node's own modification time (not the subtree maximum;
// see Node.Aggregates().LatestMtime for that).
func (n *Node) Mtime() time.Time { return n.mtime }

// UID returns the node's owning user id.
func (n *Node) UID() uint32 { return n.uid }

// GID returns the node's owning group id.
func (n *Node) GID() uint32 { return n.gid }

// IsSparseFile reports whether this node is a regular file whose allocated
// size is substantially smaller than its apparent size (invariant 4): it
// must be a regular file, have a nonzero block count, and satisfy
// allocatedSize + fragmentTolerance < byteSize.
func (n *Node) IsSparseFile() bool {
	if n.kind != KindFile || !n.mode.IsRegular() {
		return false
	}
	if n.blocks == 0 {
		return false
	}
	return n.AllocatedSize()+fragmentTolerance < n.byteSize
}

// IsHardLinked reports whether this node is a regular file shared across
// more than one directory entry.
func (n *Node) IsHardLinked() bool {
	return n.kind == KindFile && n.mode.IsRegular() && n.linkCount > 1
}

// EffectiveSize returns the size this node contributes to its ancestors'
// totals. Sparse-file detection is checked first: a sparse file contributes
// its allocated size. Otherwise, a hard-linked regular file (link count > 1)
// contributes byteSize/linkCount, dividing the cost evenly across every
// directory entry that references the same inode. Every other node
// contributes its full byteSize.
func (n *Node) EffectiveSize() int64 {
	if n.IsSparseFile() {
		return n.AllocatedSize()
	}
	if n.IsHardLinked() {
		return n.byteSize / int64(n.linkCount)
	}
	return n.byteSize
}

// ReadState returns the node's read state. For a DotEntry, this is defined
// to be its parent Dir's read state, since a DotEntry has no read job of its
// own.
func (n *Node) ReadState() ReadState {
	if n.kind == KindDotEntry && n.parent != nil {
		return n.parent.ReadState()
	}
	return n.readState
}

// SetReadState sets the node's own read state directly. It has no effect on
// a DotEntry, whose ReadState is always derived from its parent.
func (n *Node) SetReadState(s ReadState) {
	if n.kind == KindDotEntry {
		return
	}
	n.readState = s
}

// DotEntry returns the node's DotEntry child, or nil if it has none.
func (n *Node) DotEntry() *Node { return n.dotEntry }

// Attic returns the node's Attic child, or nil if it has none.
func (n *Node) Attic() *Node { return n.attic }

// Children returns the node's own child list: Dir-kind children for a Dir,
// Pkg, Root, or Attic (an Attic's files sit in its own DotEntry), File-kind
// children for a DotEntry, and, for a Dir whose files FinalizeLocal has
// moved out of its DotEntry, those files too. The returned slice MUST NOT be
// mutated by the caller; use Tree.InsertChild and Tree.DeleteSubtree
// instead.
func (n *Node) Children() []*Node { return n.children }

// HasChildren reports whether the node has any direct children, a DotEntry,
// or an Attic.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0 || n.dotEntry != nil || n.attic != nil
}

// Aggregates returns the node's cached aggregate sums, recomputing them
// first if they have been flagged dirty. Meaningful only for Dir-like
// nodes; a File returns its own EffectiveSize/Blocks/Mtime wrapped as a
// single-node Aggregates value.
func (n *Node) Aggregates() Aggregates {
	if !n.kind.IsDirLike() {
		return Aggregates{
			TotalSize:          n.EffectiveSize(),
			TotalAllocatedSize: n.AllocatedSize(),
			TotalBlocks:        n.blocks,
			LatestMtime:        n.mtime,
		}
	}
	if n.aggregates.dirty {
		n.recomputeAggregates()
	}
	return n.aggregates
}

// recomputeAggregates iterates the node's children exactly once, summing
// their aggregates (or their own size, for File children) into this node's
// own Aggregates. An Attic's sums are never folded into its parent; the
// Attic itself is simply skipped when present as a sibling container.
func (n *Node) recomputeAggregates() {
	var agg Aggregates
	agg.LatestMtime = n.mtime
	agg.TotalSize = n.EffectiveSize()
	agg.TotalAllocatedSize = n.AllocatedSize()
	agg.TotalBlocks = n.blocks

	addChild := func(c *Node) {
		childAgg := c.Aggregates()
		agg.TotalSize += childAgg.TotalSize
		agg.TotalAllocatedSize += childAgg.TotalAllocatedSize
		agg.TotalBlocks += childAgg.TotalBlocks
		agg.SparseFileCount += childAgg.SparseFileCount
		agg.HardLinkedFileCount += childAgg.HardLinkedFileCount
		// childAgg.PendingReadJobs already includes c's own busy-Dir
		// contribution (folded in by c's own recomputeAggregates), so it is
		// not added again here.
		agg.PendingReadJobs += childAgg.PendingReadJobs
		if c.kind.IsDirLike() {
			agg.TotalItems += childAgg.TotalItems + 1
			agg.TotalFiles += childAgg.TotalFiles
			agg.TotalSubDirs += childAgg.TotalSubDirs + 1
		} else {
			agg.TotalItems++
			agg.TotalFiles++
			if c.IsSparseFile() {
				agg.SparseFileCount++
			}
			if c.IsHardLinked() {
				agg.HardLinkedFileCount++
			}
		}
		if childAgg.LatestMtime.After(agg.LatestMtime) {
			agg.LatestMtime = childAgg.LatestMtime
		}
	}

	for _, c := range n.children {
		addChild(c)
	}
	if n.dotEntry != nil {
		for _, c := range n.dotEntry.children {
			addChild(c)
		}
	}
	// An Attic's sums never contribute to its parent's sums (invariant 5);
	// it is deliberately not folded in here.

	agg.DirectChildrenCount = len(n.children)
	if n.dotEntry != nil {
		agg.DirectChildrenCount += len(n.dotEntry.children)
	}
	if n.kind == KindDir && n.readState.IsBusy() {
		agg.PendingReadJobs++
	}

	agg.dirty = false
	n.aggregates = agg
}

// MarkDirty flags the cached aggregates of this node and of every ancestor
// for recomputation, and drops their cached sort orders. Used whenever a
// descendant changes in a way that invalidates the sums.
func (n *Node) MarkDirty() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.aggregates.markDirty()
		invalidateSortCache(cur)
	}
}

// Touch records, via the touched marker, that some observer has looked at
// this node; Touched reports it. Change notifications go to every observer
// whether or not a node has been touched.
func (n *Node) Touch() {
	n.touched.Mark()
}

// Touched reports whether Touch has been called on this node.
func (n *Node) Touched() bool {
	return n.touched.Marked()
}

// Path returns the node's absolute filesystem path, computed by walking up
// the parent chain. A DotEntry contributes nothing of its own (it has no
// filesystem counterpart, so its children's paths are simply their parent
// Dir's path plus their own name); an Attic does contribute its pseudo-name,
// since ignored entries are still addressable within the tree even though
// the Attic itself has no disk presence.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	parentPath := n.parent.Path()
	if n.kind == KindDotEntry {
		return parentPath
	}
	if parentPath != "" && !hasTrailingSlash(parentPath) && !hasLeadingSlash(n.name) {
		return parentPath + "/" + n.name
	}
	return parentPath + n.name
}

// DebugPath returns Path with the DotEntry pseudo-name appended, for log
// messages where it is useful to see that a node lives in a DotEntry.
func (n *Node) DebugPath() string {
	if n.kind == KindDotEntry {
		return n.Path() + "/" + dotEntryName
	}
	return n.Path()
}

func hasTrailingSlash(s string) bool { return len(s) > 0 && s[len(s)-1] == '/' }
func hasLeadingSlash(s string) bool  { return len(s) > 0 && s[0] == '/' }

// Depth returns the node's distance from the Tree's Root, computed
// iteratively (the original implementation also contained an unreachable
// recursive branch; only the iterative form is implemented here).
func (n *Node) Depth() int {
	depth := 0
	for cur := n; cur != nil && cur.kind != KindRoot; cur = cur.parent {
		depth++
	}
	return depth
}
