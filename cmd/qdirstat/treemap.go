package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	appcmd "github.com/qdirstat-go/qdirstat/cmd"
	"github.com/qdirstat-go/qdirstat/pkg/configuration"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/treemap"
)

// findTile descends t to the leaf tile covering (x, y), the way a pixel
// raster looks up which rectangle owns a given cell.
func findTile(t *treemap.Tile, x, y float64) *treemap.Tile {
	for {
		children := t.Children()
		if len(children) == 0 {
			return t
		}
		descended := false
		for _, child := range children {
			r := child.Rect
			if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
				t = child
				descended = true
				break
			}
		}
		if !descended {
			return t
		}
	}
}

func treemapMain(_ *cobra.Command, arguments []string) error {
	logger := logging.RootLogger

	cols, err := strconv.Atoi(arguments[1])
	if err != nil || cols <= 0 {
		return errors.Errorf("invalid column count %q", arguments[1])
	}
	rows, err := strconv.Atoi(arguments[2])
	if err != nil || rows <= 0 {
		return errors.Errorf("invalid row count %q", arguments[2])
	}

	_, root, err := runScan(arguments[0], logger)
	if err != nil {
		return err
	}

	config, err := configuration.LoadDefaultPath()
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	opts := treemap.Options{MinTileSize: config.MinTileSize, Cushioned: config.CushionShading}
	layout := treemap.Layout(root, treemap.Rect{X: 0, Y: 0, W: float64(cols), H: float64(rows)}, opts)

	useColor := colorEnabled()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			tile := findTile(layout, float64(x)+0.5, float64(y)+0.5)
			base := tile.Color
			shaded := base
			if opts.Cushioned {
				shaded = tile.Cushion.Shade(base, float64(x)+0.5, float64(y)+0.5, treemap.DefaultAmbientLight)
			}
			if useColor {
				fmt.Print(color.BgRGB(int(shaded.R), int(shaded.G), int(shaded.B)).Sprint("  "))
			} else {
				fmt.Print(legendGlyph(tile))
			}
		}
		fmt.Println()
	}

	return nil
}

// legendGlyph is the plain-text fallback for terminals without color
// support: one character naming the base color bucket a cell falls in.
func legendGlyph(t *treemap.Tile) string {
	switch t.Color {
	case treemap.DirColor:
		return "# "
	default:
		return ". "
	}
}

var treemapCommand = &cobra.Command{
	Use:   "treemap <path> <cols> <rows>",
	Short: "Scan path and render a squarified, cushion-shaded treemap",
	Args:  appcmd.ExactArguments(3, "a directory path, a column count, and a row count"),
	Run:   appcmd.Mainify(treemapMain),
}

func init() {
	registerScanFlags(treemapCommand)
}
