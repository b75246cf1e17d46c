package collision

import (
	"math"

	"github.com/san-kum/quantasim/internal/particle"
)

// CellSize is the edge length of a grid cell in simulation units.
const CellSize = 50.0

type cell struct {
	x, y int
}

// grid buckets particle indices by cell. Bucket slices are kept between
// rebuilds and truncated rather than reallocated.
type grid struct {
	size  float64
	cells map[cell][]int
}

func newGrid(size float64) *grid {
	return &grid{
		size:  size,
		cells: make(map[cell][]int),
	}
}

func (g *grid) cellOf(x, y float64) cell {
	return cell{
		x: int(math.Floor(x / g.size)),
		y: int(math.Floor(y / g.size)),
	}
}

// rebuild re-buckets every finite particle.
func (g *grid) rebuild(ps []particle.Particle) {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			// stale since the previous rebuild
			delete(g.cells, k)
			continue
		}
		g.cells[k] = bucket[:0]
	}

	for i := range ps {
		if !ps[i].Finite() {
			continue
		}
		c := g.cellOf(ps[i].X, ps[i].Y)
		g.cells[c] = append(g.cells[c], i)
	}
}

// neighbors appends to dst the indices bucketed in the 3x3 block of cells
// centred on (x, y).
func (g *grid) neighbors(x, y float64, dst []int) []int {
	c := g.cellOf(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			dst = append(dst, g.cells[cell{c.x + dx, c.y + dy}]...)
		}
	}
	return dst
}
