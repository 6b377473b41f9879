package treemap

import (
	"math"
	"sort"

	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// Tile is one rectangle of a squarified layout, lazily associated with the
// tree.Node it represents. A Tile's Children are not computed until
// Children is called, so a viewport that never descends into a
// below-threshold or collapsed subtree never pays for laying it out.
type Tile struct {
	Node  *tree.Node
	Rect  Rect
	Depth int
	Color Color

	opts     Options
	children []*Tile
	computed bool

	// Cushion holds this tile's height-field coefficients, set during
	// materialization when opts.Cushioned is true.
	Cushion Cushion
}

// Layout returns the root Tile for node's subtree occupying rect. Nothing
// beneath the root is computed yet; call Children to descend one level at a
// time.
func Layout(node *tree.Node, rect Rect, opts Options) *Tile {
	t := &Tile{Node: node, Rect: rect, Depth: 0, opts: opts}
	t.Color = baseColor(node)
	if opts.Cushioned {
		t.Cushion = rootCushion()
	}
	return t
}

// Children returns t's child tiles, computing them (by squarifying t's
// significant children into t.Rect) on first call. Below-threshold
// children are never enumerated at all, so a collapsed or off-screen tile
// costs nothing beyond this one allocation.
func (t *Tile) Children() []*Tile {
	if !t.computed {
		t.materialize()
	}
	return t.children
}

// significantChild pairs a layout candidate with the area basis (allocated
// size) used to size it.
type significantChild struct {
	node *tree.Node
	area float64
}

// layoutChildren enumerates t.Node's direct layout-significant children: its
// Dir-kind children plus, if present, its DotEntry (representing the files
// directly inside it) — its Attic, per invariant 5, never contributes to a
// parent's aggregates and is never shown as a treemap tile.
func layoutChildren(node *tree.Node) []*tree.Node {
	if node == nil || !node.IsValid() {
		return nil
	}
	children := make([]*tree.Node, 0, len(node.Children())+1)
	children = append(children, node.Children()...)
	if de := node.DotEntry(); de != nil {
		children = append(children, de)
	}
	return children
}

func allocatedSizeBasis(node *tree.Node) float64 {
	return math.Max(float64(node.Aggregates().TotalAllocatedSize), 1)
}

// materialize squarifies t.Node's significant children into t.Rect,
// dropping any whose scaled rectangle would fall below the configured
// minimum tile size.
func (t *Tile) materialize() {
	t.computed = true
	if t.Node == nil || !t.Node.IsValid() || !t.Node.Kind().IsDirLike() {
		return
	}

	candidates := layoutChildren(t.Node)
	if len(candidates) == 0 {
		return
	}

	total := 0.0
	items := make([]significantChild, len(candidates))
	for i, c := range candidates {
		items[i] = significantChild{node: c, area: allocatedSizeBasis(c)}
		total += items[i].area
	}
	sort.Slice(items, func(i, j int) bool { return items[i].area > items[j].area })

	rects := squarify(items, t.Rect, total)
	minSize := t.opts.minTileSize()

	for i, item := range items {
		r := rects[i]
		if math.Max(r.W, r.H) < minSize {
			continue // below threshold: parent tile shows through, not enumerated further
		}
		child := &Tile{Node: item.node, Rect: r, Depth: t.Depth + 1, opts: t.opts}
		child.Color = baseColor(item.node)
		if t.opts.Cushioned {
			child.Cushion = t.Cushion.ridged(r, t.Rect)
		}
		t.children = append(t.children, child)
	}
}

// squarify lays out items (already sorted descending by area, summing to
// total) into rect, returning one Rect per item in the same order. Rows are
// accumulated along the rectangle's shorter axis; a row is closed and laid
// out perpendicular to that axis as soon as adding the next item would make
// the row's worst aspect ratio worse rather than better.
func squarify(items []significantChild, rect Rect, total float64) []Rect {
	rects := make([]Rect, len(items))
	if len(items) == 0 || total <= 0 || rect.W <= 0 || rect.H <= 0 {
		return rects
	}

	totalArea := rect.Area()
	areas := make([]float64, len(items))
	for i, it := range items {
		areas[i] = (it.area / total) * totalArea
	}

	remaining := rect
	i := 0
	for i < len(areas) {
		shortSide := remaining.shorterSide()

		rowEnd := i + 1
		rowArea := areas[i]
		for rowEnd < len(areas) {
			nextArea := areas[rowEnd]
			if worstAspectRatio(areas[i:rowEnd], rowArea, shortSide) <
				worstAspectRatio(areas[i:rowEnd+1], rowArea+nextArea, shortSide) {
				break
			}
			rowArea += nextArea
			rowEnd++
		}

		remaining = layoutRow(areas[i:rowEnd], rowArea, remaining, rects, i)
		i = rowEnd
	}
	return rects
}

// worstAspectRatio returns the worst (largest) width/height ratio among the
// tiles a row of the given areas would produce if laid out along a strip of
// length shortSide, without knowing yet which of the row's two possible
// orientations will be used — both orientations have the same worst ratio.
func worstAspectRatio(rowAreas []float64, rowArea, shortSide float64) float64 {
	if len(rowAreas) == 0 || shortSide <= 0 || rowArea <= 0 {
		return math.MaxFloat64
	}
	s2 := shortSide * shortSide
	worst := 0.0
	for _, a := range rowAreas {
		r1 := (s2 * a) / (rowArea * rowArea)
		r2 := (rowArea * rowArea) / (s2 * a)
		if ratio := math.Max(r1, r2); ratio > worst {
			worst = ratio
		}
	}
	return worst
}

// layoutRow positions the row's tiles into rects[startIndex:] and returns
// the rectangle still remaining after the row is carved off along whichever
// of rect's axes is currently longer.
func layoutRow(rowAreas []float64, rowArea float64, rect Rect, rects []Rect, startIndex int) Rect {
	if len(rowAreas) == 0 {
		return rect
	}

	if rect.W >= rect.H {
		// Rows run along the (shorter) vertical axis, placed left to right.
		rowWidth := rowArea / rect.H
		y := rect.Y
		for i, a := range rowAreas {
			h := a / rowWidth
			rects[startIndex+i] = Rect{X: rect.X, Y: y, W: rowWidth, H: h}
			y += h
		}
		return Rect{X: rect.X + rowWidth, Y: rect.Y, W: rect.W - rowWidth, H: rect.H}
	}

	// Rows run along the (shorter) horizontal axis, placed top to bottom.
	rowHeight := rowArea / rect.W
	x := rect.X
	for i, a := range rowAreas {
		w := a / rowHeight
		rects[startIndex+i] = Rect{X: x, Y: rect.Y, W: w, H: rowHeight}
		x += w
	}
	return Rect{X: rect.X, Y: rect.Y + rowHeight, W: rect.W, H: rect.H - rowHeight}
}
