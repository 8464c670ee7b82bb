package world

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/raycast/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - Coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - Container of body indices in a cell
type Cell struct {
	bodyIndices []int
}

// SpatialGrid - Uniform spatial grid with hashing, used as the ray broad phase
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	// Bodies too large for the grid (planes, oversized AABBs), always tested
	planes Cell
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - Creates a new spatial grid
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - Rounds up to the next power of 2
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert - Inserts a body in every cell it occupies
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	if body.IsUnbounded() {
		sg.planes.bodyIndices = append(sg.planes.bodyIndices, bodyIndex)
		return
	}

	aabb := body.GetAABB()
	lo, okMin := sg.cellCoords(aabb.Min)
	hi, okMax := sg.cellCoords(aabb.Max)

	// Spanning more cells than the table holds would only revisit the same buckets
	span := (hi[0] - lo[0] + 1) * (hi[1] - lo[1] + 1) * (hi[2] - lo[2] + 1)
	if !okMin || !okMax || span > float64(len(sg.cells)) {
		sg.planes.bodyIndices = append(sg.planes.bodyIndices, bodyIndex)
		return
	}

	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				sg.cells[cellIdx].bodyIndices = append(
					sg.cells[cellIdx].bodyIndices,
					bodyIndex,
				)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.planes.bodyIndices = sg.planes.bodyIndices[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// maxCellCoord bounds the cell coordinates a traversal walks with ints
const maxCellCoord = 1 << 40

// TraverseSegment calls visit for every body index stored along the ray:
// the always-tested bodies first, then the cells crossed by the segment in
// order (3D DDA). An index can be visited several times.
//
// visit returns the distance beyond which the caller no longer needs bodies,
// usually its nearest hit so far. The walk stops once it leaves that range.
// Segments crossing more cells than the table holds, or too far from the
// origin to be walked, visit every stored body instead.
func (sg *SpatialGrid) TraverseSegment(ray actor.Ray, visit func(bodyIndex int) float64) {
	limit := ray.Length
	for _, idx := range sg.planes.bodyIndices {
		limit = math.Min(limit, visit(idx))
	}
	if ray.IsDegenerate() {
		return
	}

	start, okStart := sg.cellCoords(ray.Origin)
	end, okEnd := sg.cellCoords(ray.End())
	if !okStart || !okEnd {
		sg.scan(visit)
		return
	}
	crossed := math.Abs(end[0]-start[0]) + math.Abs(end[1]-start[1]) + math.Abs(end[2]-start[2])
	if crossed > float64(len(sg.cells)) {
		sg.scan(visit)
		return
	}

	cell := [3]int{int(start[0]), int(start[1]), int(start[2])}

	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		d := ray.Direction[i]
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1)*sg.cellSize - ray.Origin[i]) / d
			tDelta[i] = sg.cellSize / d
		case d < 0:
			step[i] = -1
			tMax[i] = (float64(cell[i])*sg.cellSize - ray.Origin[i]) / d
			tDelta[i] = -sg.cellSize / d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	// Upper bound on the cells crossed, with slack for rounding at the end cell
	steps := int(crossed) + 2

	for range steps + 1 {
		for _, idx := range sg.cells[sg.hashCell(CellKey{cell[0], cell[1], cell[2]})].bodyIndices {
			limit = math.Min(limit, visit(idx))
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		// The next cell is entered at tMax[axis]
		if tMax[axis] > limit {
			return
		}

		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
}

// scan visits every body stored in the cells, bucket by bucket
func (sg *SpatialGrid) scan(visit func(bodyIndex int) float64) {
	for i := range sg.cells {
		for _, idx := range sg.cells[i].bodyIndices {
			visit(idx)
		}
	}
}

// cellCoords returns the cell coordinates of pos as floats, and false when
// they are not finite or exceed maxCellCoord
func (sg *SpatialGrid) cellCoords(pos mgl64.Vec3) ([3]float64, bool) {
	var c [3]float64
	for i := 0; i < 3; i++ {
		c[i] = math.Floor(pos[i] / sg.cellSize)
		if math.IsNaN(c[i]) || math.Abs(c[i]) > maxCellCoord {
			return c, false
		}
	}
	return c, true
}

// worldToCell - Converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - Hashes a cell to an index in the array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// candidates deduplicates the body indices produced by a traversal
type candidates struct {
	seen []bool
	list []int
}

var candidatesPool = sync.Pool{
	New: func() interface{} {
		return &candidates{}
	},
}

func (c *candidates) reset(bodyCount int) {
	for _, idx := range c.list {
		c.seen[idx] = false
	}
	c.list = c.list[:0]

	if len(c.seen) < bodyCount {
		c.seen = make([]bool, bodyCount)
	}
}

// add records bodyIndex and reports whether it was new
func (c *candidates) add(bodyIndex int) bool {
	if c.seen[bodyIndex] {
		return false
	}
	c.seen[bodyIndex] = true
	c.list = append(c.list, bodyIndex)
	return true
}
