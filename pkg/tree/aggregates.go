package tree

import "time"

// Aggregates holds the cached, pull-computed sums a Dir maintains over its
// subtree. They are recomputed in full whenever the Dir is flagged dirty and
// any aggregate is read; incremental updates are applied on child_added only
// while the Dir is not already dirty.
type Aggregates struct {
	// TotalSize is the sum of the effective size (see Node.EffectiveSize)
	// of every descendant plus the Dir's own size.
	TotalSize int64
	// TotalAllocatedSize is the sum of allocated (block-based) size over
	// the subtree plus the Dir's own allocated size.
	TotalAllocatedSize int64
	// TotalBlocks is the sum of 512-byte block counts over the subtree.
	TotalBlocks int64
	// TotalItems is the count of descendants, excluding the Dir itself.
	TotalItems int
	// TotalFiles is the count of non-directory descendants.
	TotalFiles int
	// TotalSubDirs is the count of Dir descendants.
	TotalSubDirs int
	// LatestMtime is the maximum modification time over the Dir itself and
	// its entire subtree.
	LatestMtime time.Time
	// DirectChildrenCount is the number of immediate children (Dirs plus
	// the DotEntry's files, if any), not counting the DotEntry or Attic
	// containers themselves.
	DirectChildrenCount int
	// PendingReadJobs is the number of scheduled or in-progress read jobs
	// anywhere in this subtree.
	PendingReadJobs int
	// SparseFileCount is the number of sparse regular files in the
	// subtree (see Node.IsSparseFile).
	SparseFileCount int
	// HardLinkedFileCount is the number of regular files in the subtree
	// with a hard link count greater than one.
	HardLinkedFileCount int

	// dirty is set whenever a descendant changes in a way that
	// invalidates these sums; the next read recomputes them from scratch.
	dirty bool
}

// markDirty flags the aggregates for full recomputation on next read.
func (a *Aggregates) markDirty() {
	a.dirty = true
}
