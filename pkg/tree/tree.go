package tree

import (
	"github.com/qdirstat-go/qdirstat/pkg/duerrors"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
)

// Tree is the in-memory representation of one or more scanned filesystem
// subtrees, rooted at an invisible Root node. It is single-owner: there is
// no locking, and pointers it hands out are invalidated by any operation
// that deletes nodes.
type Tree struct {
	logger    *logging.Logger
	root      *Node
	observers []Observer
}

// NewTree creates an empty Tree, owning a freshly allocated Root.
func NewTree(logger *logging.Logger) *Tree {
	return &Tree{
		logger: logger.Sublogger("tree"),
		root:   NewRoot(),
	}
}

// Root returns the tree's invisible pseudo-root.
func (t *Tree) Root() *Node {
	return t.root
}

// FirstTopLevel returns the first real (visible) child of Root, or nil if
// the tree has no top-level entries yet.
func (t *Tree) FirstTopLevel() *Node {
	if len(t.root.children) == 0 {
		return nil
	}
	return t.root.children[0]
}

// InsertChild inserts newChild under parent. If newChild is a Dir, Pkg, or
// Root-ineligible container it is appended to parent's children list;
// otherwise (a File) it is appended to parent's DotEntry, created lazily if
// this is the first file child. Sets newChild's parent back-pointer,
// applies an incremental aggregate update when parent is not already dirty,
// invalidates parent's sort cache, and emits ChildAdded.
//
// Inserting into the wrong kind of parent (e.g. a File, or a DotEntry
// receiving a Dir) is a ProgrammerError: it is refused, logged, and
// reported, but never panics.
func (t *Tree) InsertChild(parent, newChild *Node) error {
	if err := parent.CheckValid(); err != nil {
		return err
	}
	if !parent.kind.IsDirLike() {
		err := &duerrors.ProgrammerError{Reason: "insert_child: parent is not a container node"}
		t.logger.Error(err)
		return err
	}

	if parent.kind == KindDotEntry && newChild.kind.IsDirLike() {
		err := &duerrors.ProgrammerError{Reason: "insert_child: a DotEntry may not have a DotEntry or subdirectory child"}
		t.logger.Error(err)
		return err
	}

	newChild.parent = parent

	if newChild.kind.IsDirLike() || parent.kind == KindDotEntry {
		parent.children = append(parent.children, newChild)
	} else {
		if parent.dotEntry == nil {
			parent.dotEntry = newNode(KindDotEntry, dotEntryName)
			parent.dotEntry.parent = parent
		}
		newChild.parent = parent.dotEntry
		parent.dotEntry.children = append(parent.dotEntry.children, newChild)
	}

	if !parent.aggregates.dirty {
		t.applyIncrementalInsert(newChild.parent, newChild)
	}
	invalidateSortCache(parent)

	t.emitChildAdded(newChild)
	return nil
}

// applyIncrementalInsert updates parent's (and its ancestors') cached
// aggregates to account for newChild, without a full recomputation, and
// drops the sort cache of every node it passes. The walk stops at a dirty
// node and after an Attic, whose sums never reach its parent. Used only
// when parent's aggregates are not already dirty; a dirty parent will pick
// up the new child on its next full recompute instead.
func (t *Tree) applyIncrementalInsert(parent, newChild *Node) {
	size := newChild.EffectiveSize()
	allocated := newChild.AllocatedSize()
	blocks := newChild.blocks
	isDir := newChild.kind == KindDir
	sparse := newChild.IsSparseFile()
	hardLinked := newChild.IsHardLinked()

	for cur := parent; cur != nil && cur.kind != KindRoot; cur = cur.parent {
		invalidateSortCache(cur)
		invalidateSortCache(cur.parent)
		if cur.aggregates.dirty {
			break
		}
		cur.aggregates.TotalSize += size
		cur.aggregates.TotalAllocatedSize += allocated
		cur.aggregates.TotalBlocks += blocks
		cur.aggregates.TotalItems++
		cur.aggregates.DirectChildrenCount = len(cur.children)
		if cur.dotEntry != nil {
			cur.aggregates.DirectChildrenCount += len(cur.dotEntry.children)
		}
		if isDir {
			cur.aggregates.TotalSubDirs++
		} else {
			cur.aggregates.TotalFiles++
		}
		if sparse {
			cur.aggregates.SparseFileCount++
		}
		if hardLinked {
			cur.aggregates.HardLinkedFileCount++
		}
		if newChild.mtime.After(cur.aggregates.LatestMtime) {
			cur.aggregates.LatestMtime = newChild.mtime
		}
		if cur.kind == KindAttic {
			break
		}
	}
}

// DeleteSubtree removes node and everything beneath it from the tree.
// Deletion notifies the parent first (DeletingChild) so observers can
// react while the tree is still intact, then unlinks node, marks the
// parent's aggregates dirty, frees the subtree recursively (invalidating
// every node's magic number), and finally — if the parent is a DotEntry
// left childless by the removal — removes that DotEntry too.
func (t *Tree) DeleteSubtree(node *Node) error {
	if err := node.CheckValid(); err != nil {
		return err
	}
	parent := node.parent
	if parent == nil {
		return &duerrors.ProgrammerError{Reason: "delete_subtree: cannot delete the tree root"}
	}

	t.emitDeletingChild(node)

	parent.children = removeNode(parent.children, node)
	if parent.dotEntry == node {
		parent.dotEntry = nil
	}
	if parent.attic == node {
		parent.attic = nil
	}
	parent.MarkDirty()
	invalidateSortCache(parent)

	t.invalidateRecursive(node)

	if parent.kind == KindDotEntry && len(parent.children) == 0 && parent.parent != nil {
		grandparent := parent.parent
		grandparent.dotEntry = nil
		t.invalidateRecursive(parent)
	}

	return nil
}

// invalidateRecursive walks node's subtree and zeroes every node's magic
// number, so stale observer pointers fail IsValid instead of reading data
// that is logically gone.
func (t *Tree) invalidateRecursive(node *Node) {
	for _, c := range node.children {
		t.invalidateRecursive(c)
	}
	if node.dotEntry != nil {
		t.invalidateRecursive(node.dotEntry)
	}
	if node.attic != nil {
		t.invalidateRecursive(node.attic)
	}
	node.invalidate()
}

// removeNode returns children with node removed (by identity), preserving
// the relative order of the rest.
func removeNode(children []*Node, node *Node) []*Node {
	for i, c := range children {
		if c == node {
			return append(children[:i:i], children[i+1:]...)
		}
	}
	return children
}

// Refresh normalizes the given set of nodes (dropping any node that is a
// descendant of another node already in the set), clears each surviving
// node's existing subtree, resets it to ReadStateQueued, and returns the
// normalized set for the caller (the scanner) to enqueue new read jobs for.
func (t *Tree) Refresh(nodes []*Node) ([]*Node, error) {
	normalized := normalizeRefreshSet(nodes)

	for _, n := range normalized {
		if err := n.CheckValid(); err != nil {
			return nil, err
		}
		t.emitClearingSubtree(n)

		for _, c := range n.children {
			t.invalidateRecursive(c)
		}
		n.children = nil
		if n.dotEntry != nil {
			t.invalidateRecursive(n.dotEntry)
			n.dotEntry = nil
		}
		if n.attic != nil {
			t.invalidateRecursive(n.attic)
			n.attic = nil
		}
		n.MarkDirty()
		invalidateSortCache(n)
		n.SetReadState(ReadStateQueued)

		t.emitSubtreeCleared(n)
	}

	return normalized, nil
}

// normalizeRefreshSet drops any node in nodes that is a descendant of
// another node also present in nodes, since refreshing an ancestor already
// implies refreshing its descendants.
func normalizeRefreshSet(nodes []*Node) []*Node {
	set := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}

	var result []*Node
	for _, n := range nodes {
		ancestorPresent := false
		for cur := n.parent; cur != nil; cur = cur.parent {
			if set[cur] {
				ancestorPresent = true
				break
			}
		}
		if !ancestorPresent {
			result = append(result, n)
		}
	}
	return result
}

// MarkTouched records that an observer has looked at node, via its touched
// marker.
func (t *Tree) MarkTouched(node *Node) {
	node.Touch()
}

// StartingRead transitions dir to ReadStateReading and emits StartingRead.
// Called by the scanner immediately before it begins a unit of work on dir.
func (t *Tree) StartingRead(dir *Node) {
	dir.SetReadState(ReadStateReading)
	t.emitStartingRead(dir)
}

// ReadJobFinished emits ReadJobFinished for dir, without altering its read
// state (the scanner is responsible for having already set the terminal
// state via SetReadState before calling this).
func (t *Tree) ReadJobFinished(dir *Node) {
	t.emitReadJobFinished(dir)
}

// FinalizeLocal prunes dir's DotEntry once its read has finished: if dir has
// no subdirectory children, the DotEntry's files are reparented directly
// under dir and the DotEntry is discarded; if the DotEntry ends up empty, it
// is discarded outright. Emits FinalizeLocal either way.
func (t *Tree) FinalizeLocal(dir *Node) {
	if dir.dotEntry != nil {
		if len(dir.children) == 0 {
			for _, c := range dir.dotEntry.children {
				c.parent = dir
			}
			dir.children = append(dir.children, dir.dotEntry.children...)
			dir.dotEntry.invalidate()
			dir.dotEntry = nil
		} else if len(dir.dotEntry.children) == 0 {
			dir.dotEntry.invalidate()
			dir.dotEntry = nil
		}
	}
	invalidateSortCache(dir)
	t.emitFinalizeLocal(dir)
}
