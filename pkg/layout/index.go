package layout

import (
	"cmp"
	"math"
	"slices"
)

// DefaultCellSize is the edge length of a spatial index cell in meters.
// It should exceed the typical object footprint so a query touches only a
// handful of cells.
const DefaultCellSize = 2.0

// MinCellSize is the smallest cell edge the pipeline accepts.
const MinCellSize = 0.01

// MaxCellsPerBox bounds the cells one insert or query walks. Objects whose
// box covers more go to an overflow list that every query returns.
const MaxCellsPerBox = 1 << 12

// Cell identifies one cube of the uniform grid. Coordinates beyond the
// int32 range are clamped to its edges.
type Cell struct {
	X, Y, Z int32
}

// SpatialIndex is a uniform-grid spatial hash over placed objects. An
// object is referenced from every cell its bounding box touches.
//
// A SpatialIndex belongs to a single Align call and is not safe for
// concurrent use.
type SpatialIndex struct {
	cellSize float64
	cells    map[Cell][]*PlacedObject
	seq      map[*PlacedObject]int
	order    []*PlacedObject
	overflow []*PlacedObject
}

// NewSpatialIndex creates an empty index. A non-positive cellSize falls
// back to DefaultCellSize.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[Cell][]*PlacedObject),
		seq:      make(map[*PlacedObject]int),
	}
}

// CellSize returns the edge length of the grid cells.
func (idx *SpatialIndex) CellSize() float64 { return idx.cellSize }

// Len returns the number of distinct objects inserted.
func (idx *SpatialIndex) Len() int { return len(idx.seq) }

// CellCount returns the number of non-empty cells.
func (idx *SpatialIndex) CellCount() int { return len(idx.cells) }

// OverflowCount returns the number of objects too large to bucket.
func (idx *SpatialIndex) OverflowCount() int { return len(idx.overflow) }

// Insert adds obj to every cell covered by its bounding box. Inserting the
// same object twice is a no-op.
func (idx *SpatialIndex) Insert(obj *PlacedObject) {
	if obj == nil {
		return
	}
	if _, ok := idx.seq[obj]; ok {
		return
	}
	idx.seq[obj] = len(idx.seq)
	idx.order = append(idx.order, obj)

	r := idx.cellRange(obj.BoundingBox)
	if r.count() > MaxCellsPerBox {
		idx.overflow = append(idx.overflow, obj)
		return
	}
	r.each(func(c Cell) {
		idx.cells[c] = append(idx.cells[c], obj)
	})
}

// Cells returns the cells box covers, in x, y, z order, or nil when it
// covers more than MaxCellsPerBox.
func (idx *SpatialIndex) Cells(box BoundingBox) []Cell {
	r := idx.cellRange(box)
	n := r.count()
	if n > MaxCellsPerBox {
		return nil
	}
	out := make([]Cell, 0, n)
	r.each(func(c Cell) { out = append(out, c) })
	return out
}

// Query returns every object referenced by a cell that box, grown by
// margin, touches, plus every overflow object. Each object appears once,
// in insertion order. The result is a broad-phase shortlist: callers still
// need an exact test.
func (idx *SpatialIndex) Query(box BoundingBox, margin float64) []*PlacedObject {
	if margin > 0 {
		box = box.Expand(margin)
	}
	r := idx.cellRange(box)
	if r.count() > MaxCellsPerBox {
		return slices.Clone(idx.order)
	}

	seen := make(map[*PlacedObject]struct{})
	var out []*PlacedObject
	add := func(obj *PlacedObject) {
		if _, dup := seen[obj]; dup {
			return
		}
		seen[obj] = struct{}{}
		out = append(out, obj)
	}
	r.each(func(c Cell) {
		for _, obj := range idx.cells[c] {
			add(obj)
		}
	})
	for _, obj := range idx.overflow {
		add(obj)
	}
	if len(out) > 1 {
		slices.SortFunc(out, func(a, b *PlacedObject) int {
			return cmp.Compare(idx.seq[a], idx.seq[b])
		})
	}
	return out
}

// cellSpan is an inclusive range of cells held in int64 so the walk can
// never wrap.
type cellSpan struct {
	lo, hi [3]int64
}

func (idx *SpatialIndex) cellRange(box BoundingBox) cellSpan {
	var s cellSpan
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}
	for i := range 3 {
		s.lo[i] = idx.coord(lo[i])
		s.hi[i] = idx.coord(hi[i])
		if s.hi[i] < s.lo[i] {
			s.hi[i] = s.lo[i]
		}
	}
	return s
}

// coord maps v to its clamped cell coordinate. NaN maps to 0.
func (idx *SpatialIndex) coord(v float64) int64 {
	c := math.Floor(v / idx.cellSize)
	switch {
	case math.IsNaN(c):
		return 0
	case c <= math.MinInt32:
		return math.MinInt32
	case c >= math.MaxInt32:
		return math.MaxInt32
	}
	return int64(c)
}

// count returns the number of cells in s, saturating above MaxCellsPerBox.
func (s cellSpan) count() int64 {
	n := int64(1)
	for i := range 3 {
		n *= s.hi[i] - s.lo[i] + 1
		if n > MaxCellsPerBox {
			return MaxCellsPerBox + 1
		}
	}
	return n
}

func (s cellSpan) each(fn func(Cell)) {
	for x := s.lo[0]; x <= s.hi[0]; x++ {
		for y := s.lo[1]; y <= s.hi[1]; y++ {
			for z := s.lo[2]; z <= s.hi[2]; z++ {
				fn(Cell{X: int32(x), Y: int32(y), Z: int32(z)})
			}
		}
	}
}
