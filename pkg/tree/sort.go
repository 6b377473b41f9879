package tree

import "sort"

// SortColumn identifies a sort key for Tree.SortedChildren.
type SortColumn uint8

const (
	// SortByName sorts lexicographically on name.
	SortByName SortColumn = iota
	// SortByTotalSize sorts on the aggregate total size (own
	// EffectiveSize for a File).
	SortByTotalSize
	// SortByTotalItems sorts on the aggregate total item count.
	SortByTotalItems
	// SortByLatestMtime sorts on the aggregate latest modification time.
	SortByLatestMtime
)

// SortOrder identifies ascending or descending order for Tree.SortedChildren.
type SortOrder uint8

const (
	// SortAscending sorts smallest/earliest/alphabetically-first first.
	SortAscending SortOrder = iota
	// SortDescending sorts largest/latest/alphabetically-last first.
	SortDescending
)

// sortCacheEntry remembers the (column, order, sorted-sequence) triple last
// computed for a parent, so that repeated requests for the same sort key
// skip re-sorting.
type sortCacheEntry struct {
	column SortColumn
	order  SortOrder
	result []*Node
}

// sortKey extracts the comparison value this node contributes under the
// given column.
func sortKey(n *Node, column SortColumn) (int64, string) {
	switch column {
	case SortByTotalSize:
		return n.Aggregates().TotalSize, n.name
	case SortByTotalItems:
		return int64(n.Aggregates().TotalItems), n.name
	case SortByLatestMtime:
		return n.Aggregates().LatestMtime.Unix(), n.name
	default:
		return 0, n.name
	}
}

// SortedChildren returns parent's children (including its DotEntry and
// Attic, if present, as pseudo-children) sorted by column with a secondary
// ascending-name tie-break, applying order to the primary key only. The
// result is cached on the parent and invalidated by InsertChild,
// DeleteSubtree, or any aggregate change on the sort column.
func (t *Tree) SortedChildren(parent *Node, column SortColumn, order SortOrder) ([]*Node, error) {
	if err := parent.CheckValid(); err != nil {
		return nil, err
	}

	if parent.sortCache != nil && parent.sortCache.column == column && parent.sortCache.order == order {
		return parent.sortCache.result, nil
	}

	all := make([]*Node, 0, len(parent.children)+2)
	all = append(all, parent.children...)
	if parent.dotEntry != nil {
		all = append(all, parent.dotEntry)
	}
	if parent.attic != nil {
		all = append(all, parent.attic)
	}

	sort.Slice(all, func(i, j int) bool {
		ki, ni := sortKey(all[i], column)
		kj, nj := sortKey(all[j], column)
		if ki != kj {
			if order == SortDescending {
				return ki > kj
			}
			return ki < kj
		}
		return ni < nj
	})

	parent.sortCache = &sortCacheEntry{column: column, order: order, result: all}
	return all, nil
}

// invalidateSortCache drops parent's cached sort result, forcing the next
// SortedChildren call to recompute it.
func invalidateSortCache(parent *Node) {
	if parent != nil {
		parent.sortCache = nil
	}
}
