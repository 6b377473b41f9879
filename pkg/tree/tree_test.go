package tree

import (
	"testing"

	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
)

func dirStat() *filesystem.RawStat {
	return &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory}
}

// dirStatWithOwnSize is like dirStat but with a nonzero apparent size and
// block count of its own, the way a real directory inode has a size on
// disk distinct from the entries it contains.
func dirStatWithOwnSize(size, blocks int64) *filesystem.RawStat {
	return &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory, Size: size, Blocks: blocks}
}

// buildSimpleDir creates "/home/user" with three plain files directly in it
// and no subdirectories, wired through a fresh Tree.
func buildSimpleDir(t *testing.T) (*Tree, *Node) {
	t.Helper()
	tr := NewTree(nil)
	top := NewDir("/home/user", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))

	for i, size := range []int64{100, 200, 300} {
		f := NewFile(string(rune('a'+i))+".txt", regularFileStat(size, (size/512)+1, 1))
		must(t, tr.InsertChild(top, f))
	}
	return tr, top
}

// TestDotEntryPruningWhenNoSubdirs is scenario S1: a Dir containing only
// files, after FinalizeLocal, loses its DotEntry and reparents the files
// directly underneath.
func TestDotEntryPruningWhenNoSubdirs(t *testing.T) {
	tr, top := buildSimpleDir(t)

	if top.dotEntry == nil {
		t.Fatal("expected a DotEntry to have been created lazily")
	}
	wantTotal := top.Aggregates().TotalSize

	tr.FinalizeLocal(top)

	if top.dotEntry != nil {
		t.Error("DotEntry should have been pruned away")
	}
	if len(top.children) != 3 {
		t.Errorf("expected 3 files reparented directly under the dir, got %d", len(top.children))
	}
	for _, c := range top.children {
		if c.parent != top {
			t.Error("reparented file's parent back-pointer should point at the dir")
		}
	}

	top.MarkDirty()
	if got := top.Aggregates().TotalSize; got != wantTotal {
		t.Errorf("TotalSize changed across finalize: got %d, want %d", got, wantTotal)
	}
}

// TestDotEntryPrunedWhenEmpty covers finalize_local branch (b): an empty
// DotEntry is discarded outright.
func TestDotEntryPrunedWhenEmpty(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/a", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))
	top.dotEntry = newNode(KindDotEntry, dotEntryName)
	top.dotEntry.parent = top

	tr.FinalizeLocal(top)

	if top.dotEntry != nil {
		t.Error("an empty DotEntry should be discarded by FinalizeLocal")
	}
}

// TestTotalSizeInvariant is testable property 1: totalSize == ownSize +
// sum of children's totalSize. The dir itself carries a nonzero own size
// (4096 bytes, 8 blocks) so a recomputeAggregates that forgot to fold in
// the dir's own contribution would be caught.
func TestTotalSizeInvariant(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/home/user", dirStatWithOwnSize(4096, 8))
	must(t, tr.InsertChild(tr.Root(), top))

	for i, size := range []int64{100, 200, 300} {
		f := NewFile(string(rune('a'+i))+".txt", regularFileStat(size, (size/512)+1, 1))
		must(t, tr.InsertChild(top, f))
	}

	agg := top.Aggregates()
	if got, want := agg.TotalSize, int64(4096+600); got != want {
		t.Errorf("TotalSize = %d, want %d", got, want)
	}
	// Each 100/200/300-byte file rounds up to a single 512-byte block, so
	// the children contribute 3*512 = 1536 on top of the dir's own 8*512.
	if got, want := agg.TotalAllocatedSize, int64(8*512+3*512); got != want {
		t.Errorf("TotalAllocatedSize = %d, want %d", got, want)
	}
}

// TestTotalItemsInvariant is testable property 2.
func TestTotalItemsInvariant(t *testing.T) {
	_, top := buildSimpleDir(t)
	if got, want := top.Aggregates().TotalItems, 3; got != want {
		t.Errorf("TotalItems = %d, want %d", got, want)
	}
}

// TestHardlinkedFileAccounting is scenario S6: a file with byteSize 1024
// and links=4 contributes 256 to each ancestor Dir's totalSize.
func TestHardlinkedFileAccounting(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/a", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))
	sub := NewDir("b", dirStat())
	must(t, tr.InsertChild(top, sub))
	f := NewFile("big.bin", regularFileStat(1024, 4, 4))
	must(t, tr.InsertChild(sub, f))

	if got, want := sub.Aggregates().TotalSize, int64(256); got != want {
		t.Errorf("sub TotalSize = %d, want %d", got, want)
	}
	if got, want := top.Aggregates().TotalSize, int64(256); got != want {
		t.Errorf("top TotalSize = %d, want %d", got, want)
	}
}

// TestAtticExcludedFromParentAggregates is testable property 7.
func TestAtticExcludedFromParentAggregates(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/a", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))

	top.attic = newNode(KindAttic, "<Ignored>")
	top.attic.parent = top
	ignored := NewFile("junk.tmp", regularFileStat(9999, 99, 1))
	must(t, tr.InsertChild(top.attic, ignored))

	if got, want := top.Aggregates().TotalSize, int64(0); got != want {
		t.Errorf("Attic contents leaked into parent aggregates: TotalSize = %d, want %d", got, want)
	}
}

func TestRefreshNormalizesDescendants(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/a", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))
	sub := NewDir("b", dirStat())
	must(t, tr.InsertChild(top, sub))

	normalized, err := tr.Refresh([]*Node{top, sub})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(normalized) != 1 || normalized[0] != top {
		t.Errorf("expected Refresh to drop descendant sub, got %v", normalized)
	}
	if top.ReadState() != ReadStateQueued {
		t.Errorf("top.ReadState() = %v, want Queued", top.ReadState())
	}
}

func TestSortedChildrenNameTieBreak(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/a", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))

	b := NewDir("b", dirStat())
	a := NewDir("a", dirStat())
	must(t, tr.InsertChild(top, b))
	must(t, tr.InsertChild(top, a))

	children, err := tr.SortedChildren(top, SortByTotalSize, SortAscending)
	if err != nil {
		t.Fatalf("SortedChildren failed: %v", err)
	}
	if len(children) != 2 || children[0].Name() != "a" || children[1].Name() != "b" {
		t.Errorf("expected name tie-break ordering [a, b], got %v", namesOf(children))
	}
}

func namesOf(nodes []*Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return names
}

func TestInsertChildWrongParentIsProgrammerError(t *testing.T) {
	tr := NewTree(nil)
	file := NewFile("x", regularFileStat(1, 1, 1))
	other := NewFile("y", regularFileStat(1, 1, 1))
	if err := tr.InsertChild(file, other); err == nil {
		t.Error("expected a ProgrammerError when inserting into a non-container node")
	}
}

func TestLocateFindsNestedNode(t *testing.T) {
	tr := NewTree(nil)
	top := NewDir("/home/user", dirStat())
	must(t, tr.InsertChild(tr.Root(), top))
	sub := NewDir("Documents", dirStat())
	must(t, tr.InsertChild(top, sub))
	file := NewFile("report.pdf", regularFileStat(10, 1, 1))
	must(t, tr.InsertChild(sub, file))

	found := tr.Locate("/home/user/Documents/report.pdf", false)
	if found != file {
		t.Errorf("Locate did not find the expected file node: got %v", found)
	}

	if tr.Locate("/home/user/Documents/missing.pdf", false) != nil {
		t.Error("Locate should return nil for a nonexistent path")
	}
}

func TestLocateFindsDotEntryFile(t *testing.T) {
	tr, top := buildSimpleDir(t)
	found := tr.Locate("/home/user/a.txt", false)
	if found == nil || found.Name() != "a.txt" {
		t.Errorf("Locate should find a file living in the DotEntry, got %v", found)
	}
	_ = top
}
