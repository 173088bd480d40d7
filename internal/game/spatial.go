package game

import "slices"

const SpatialCellSize = 10.0 // ~3x the boss radius

// SpatialGrid is a uniform grid over the XZ floor plane of the play volume,
// used as the broad phase for projectile-vs-enemy tests. Entries are indices
// into the live enemy slice.
type SpatialGrid struct {
	bound float64
	cols  int
	cells [][]int
}

// NewSpatialGrid covers the square [-bound, bound] on X and Z
func NewSpatialGrid(bound float64) *SpatialGrid {
	cols := int(2*bound/SpatialCellSize) + 1
	return &SpatialGrid{
		bound: bound,
		cols:  cols,
		cells: make([][]int, cols*cols),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellRange(x, z, radius float64) (minCX, maxCX, minCZ, maxCZ int) {
	minCX = g.clampCell(int((x - radius + g.bound) / SpatialCellSize))
	maxCX = g.clampCell(int((x + radius + g.bound) / SpatialCellSize))
	minCZ = g.clampCell(int((z - radius + g.bound) / SpatialCellSize))
	maxCZ = g.clampCell(int((z + radius + g.bound) / SpatialCellSize))
	return
}

func (g *SpatialGrid) clampCell(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

// InsertSphere adds idx to all cells overlapping the sphere's XZ bounding box
func (g *SpatialGrid) InsertSphere(pos Vec3, radius float64, idx int) {
	minCX, maxCX, minCZ, maxCZ := g.cellRange(pos.X, pos.Z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			c := cz*g.cols + cx
			g.cells[c] = append(g.cells[c], idx)
		}
	}
}

// QueryBuf appends the indices near pos to buf and returns them ascending and
// without duplicates, so callers see candidates in collection order.
func (g *SpatialGrid) QueryBuf(pos Vec3, radius float64, buf []int) []int {
	minCX, maxCX, minCZ, maxCZ := g.cellRange(pos.X, pos.Z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cz*g.cols+cx]...)
		}
	}
	slices.Sort(buf)
	return slices.Compact(buf)
}
