package export

import (
	"math"

	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// rect is an axis-aligned footprint on the X/Z plane.
type rect struct {
	MinX, MinZ, MaxX, MaxZ float64
}

func (r rect) Width() float64 { return r.MaxX - r.MinX }
func (r rect) Depth() float64 { return r.MaxZ - r.MinZ }

func (r rect) union(o rect) rect {
	return rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinZ: math.Min(r.MinZ, o.MinZ),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxZ: math.Max(r.MaxZ, o.MaxZ),
	}
}

// intersect returns the shared area of r and o and whether it is non-empty.
func (r rect) intersect(o rect) (rect, bool) {
	i := rect{
		MinX: math.Max(r.MinX, o.MinX),
		MinZ: math.Max(r.MinZ, o.MinZ),
		MaxX: math.Min(r.MaxX, o.MaxX),
		MaxZ: math.Min(r.MaxZ, o.MaxZ),
	}
	return i, i.MinX < i.MaxX && i.MinZ < i.MaxZ
}

// footprint is one object as seen from above.
type footprint struct {
	Name     string
	Category string
	Rect     rect
}

// plan is the top-down view shared by the exporters.
type plan struct {
	Footprints []footprint
	Categories []string
	Overlaps   []overlap
	Bounds     rect
}

// overlap is the footprint of one collision record.
type overlap struct {
	Record layout.CollisionRecord
	Rect   rect
}

func footprintOf(p scene.Placement) footprint {
	bb := p.PlacedObject().BoundingBox
	return footprint{
		Name:     p.Name,
		Category: categoryOf(p),
		Rect:     rect{MinX: bb.Min.X, MinZ: bb.Min.Z, MaxX: bb.Max.X, MaxZ: bb.Max.Z},
	}
}

func categoryOf(p scene.Placement) string {
	if p.Category == "" {
		return layout.DefaultCategory
	}
	return p.Category
}

// newPlan projects l. Categories keep their order of first appearance.
func newPlan(l scene.Layout) plan {
	var pl plan
	seen := make(map[string]bool)
	byName := make(map[string]rect, len(l.Objects))
	for i, p := range l.Objects {
		fp := footprintOf(p)
		pl.Footprints = append(pl.Footprints, fp)
		byName[fp.Name] = fp.Rect
		if !seen[fp.Category] {
			seen[fp.Category] = true
			pl.Categories = append(pl.Categories, fp.Category)
		}
		if i == 0 {
			pl.Bounds = fp.Rect
		} else {
			pl.Bounds = pl.Bounds.union(fp.Rect)
		}
	}
	for _, rec := range l.Collisions {
		a, okA := byName[rec.A]
		b, okB := byName[rec.B]
		if !okA || !okB {
			continue
		}
		if r, ok := a.intersect(b); ok {
			pl.Overlaps = append(pl.Overlaps, overlap{Record: rec, Rect: r})
		}
	}
	return pl
}

// rgb is a display color.
type rgb struct {
	R, G, B int
}

// palette assigns colors to categories by index.
var palette = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// collisionColor marks overlaps in every exporter.
var collisionColor = rgb{R: 244, G: 67, B: 54}

func categoryColor(i int) rgb { return palette[i%len(palette)] }
