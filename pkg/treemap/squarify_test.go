package treemap

import (
	"testing"

	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func fileStat(size, blocks int64) *filesystem.RawStat {
	return &filesystem.RawStat{Mode: filesystem.ModeTypeFile | 0644, Size: size, Blocks: blocks}
}

func buildLayoutTree(t *testing.T) (*tree.Tree, *tree.Node) {
	t.Helper()
	tr := tree.NewTree(nil)
	root := tree.NewDir("/data", &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory | 0755})
	must(t, tr.InsertChild(tr.Root(), root))

	big := tree.NewFile("big.bin", fileStat(800_000, 800_000/512))
	must(t, tr.InsertChild(root, big))

	medium := tree.NewFile("medium.log", fileStat(150_000, 150_000/512))
	must(t, tr.InsertChild(root, medium))

	small := tree.NewFile("small.go", fileStat(50_000, 50_000/512))
	must(t, tr.InsertChild(root, small))

	sub := tree.NewDir("sub", &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory | 0755})
	must(t, tr.InsertChild(root, sub))
	nested := tree.NewFile("nested.txt", fileStat(400_000, 400_000/512))
	must(t, tr.InsertChild(sub, nested))

	return tr, root
}

func TestLayoutChildrenCoverParentAreaWithoutOverlap(t *testing.T) {
	_, root := buildLayoutTree(t)
	rootRect := Rect{X: 0, Y: 0, W: 200, H: 100}
	top := Layout(root, rootRect, Options{})

	children := top.Children()
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2 (1 subdir + the DotEntry holding the 3 files)", len(children))
	}

	var totalArea float64
	for _, c := range children {
		if c.Rect.X < rootRect.X || c.Rect.Y < rootRect.Y {
			t.Errorf("child rect %+v escapes parent rect %+v", c.Rect, rootRect)
		}
		if c.Rect.X+c.Rect.W > rootRect.X+rootRect.W+1e-6 {
			t.Errorf("child rect %+v overflows parent width", c.Rect)
		}
		if c.Rect.Y+c.Rect.H > rootRect.Y+rootRect.H+1e-6 {
			t.Errorf("child rect %+v overflows parent height", c.Rect)
		}
		totalArea += c.Rect.Area()
	}

	if diff := totalArea - rootRect.Area(); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("child tile areas sum to %v, want %v (parent area)", totalArea, rootRect.Area())
	}
}

func TestLayoutDescendingAreaOrder(t *testing.T) {
	_, root := buildLayoutTree(t)
	top := Layout(root, Rect{W: 200, H: 100}, Options{})

	children := top.Children()
	for i := 1; i < len(children); i++ {
		if children[i-1].Rect.Area() < children[i].Rect.Area()-1e-9 {
			t.Errorf("children not laid out in non-increasing area order: %v before %v",
				children[i-1].Rect.Area(), children[i].Rect.Area())
		}
	}
}

func TestMinTileSizeDropsTinyChildren(t *testing.T) {
	_, root := buildLayoutTree(t)
	// A tiny rectangle forces every child below any reasonable minimum tile
	// size except possibly the very largest one.
	top := Layout(root, Rect{W: 4, H: 4}, Options{MinTileSize: 3})

	children := top.Children()
	for _, c := range children {
		longer := c.Rect.W
		if c.Rect.H > longer {
			longer = c.Rect.H
		}
		if longer < 3 {
			t.Errorf("tile %+v has longer side %v below the configured minimum", c.Rect, longer)
		}
	}
}

func TestChildrenAreComputedLazily(t *testing.T) {
	_, root := buildLayoutTree(t)
	top := Layout(root, Rect{W: 200, H: 100}, Options{})
	if top.computed {
		t.Fatal("Layout must not materialize children eagerly")
	}
	_ = top.Children()
	if !top.computed {
		t.Fatal("Children() must materialize on first call")
	}
}

func TestFileTileHasNoChildren(t *testing.T) {
	_, root := buildLayoutTree(t)
	top := Layout(root, Rect{W: 200, H: 100}, Options{})
	// File tiles sit under the DotEntry tile, one level below the top.
	var tiles []*Tile
	for _, c := range top.Children() {
		tiles = append(tiles, c)
		tiles = append(tiles, c.Children()...)
	}
	for _, c := range tiles {
		if c.Node.Kind() == tree.KindFile {
			if got := c.Children(); len(got) != 0 {
				t.Errorf("a file tile must have no children, got %d", len(got))
			}
		}
	}
}
