package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// DefaultCellSize is a small multiple of the largest expected body so a query touches
// only a handful of cells.
const DefaultCellSize = 100.0

type cellKey struct {
	x, y int
}

// Grid is a uniform spatial hash used for the broad phase. It is rebuilt from scratch
// every step.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]*Body
}

// NewGrid creates an empty grid. Non-positive cell sizes fall back to DefaultCellSize.
func NewGrid(cellSize float64) *Grid {
	if !(cellSize > 0) {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*Body),
	}
}

// CellSize returns the edge length of a grid cell.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Clear empties every cell while keeping the backing slices for reuse.
func (g *Grid) Clear() {
	for k, bodies := range g.cells {
		g.cells[k] = bodies[:0]
	}
}

// Insert adds b to every cell its AABB overlaps.
func (g *Grid) Insert(b *Body) {
	if b == nil {
		return
	}
	minX, minY, maxX, maxY := g.cellRange(b.AABB())
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			k := cellKey{x: x, y: y}
			g.cells[k] = append(g.cells[k], b)
		}
	}
}

// Query returns every other body sharing at least one cell with b, without duplicates.
func (g *Grid) Query(b *Body) []*Body {
	if b == nil {
		return nil
	}
	seen := make(map[*Body]struct{})
	var out []*Body
	minX, minY, maxX, maxY := g.cellRange(b.AABB())
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for _, other := range g.cells[cellKey{x: x, y: y}] {
				if other == b {
					continue
				}
				if _, ok := seen[other]; ok {
					continue
				}
				seen[other] = struct{}{}
				out = append(out, other)
			}
		}
	}
	return out
}

func (g *Grid) cellRange(bb cp.BB) (minX, minY, maxX, maxY int) {
	minX = int(math.Floor(bb.L / g.cellSize))
	minY = int(math.Floor(bb.B / g.cellSize))
	maxX = int(math.Floor(bb.R / g.cellSize))
	maxY = int(math.Floor(bb.T / g.cellSize))
	return minX, minY, maxX, maxY
}
