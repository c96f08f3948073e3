package layout

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a point or extent in world space. X points right, Y up and Z
// into the scene; units are meters.
type Vec3 = v3.Vec

// BoundingBox is an axis-aligned box with Min[i] <= Max[i] on every axis.
type BoundingBox struct {
	Min Vec3
	Max Vec3
}

// NewBoundingBox returns the box spanning a and b, ordering each axis so
// the Min/Max invariant holds.
func NewBoundingBox(a, b Vec3) BoundingBox {
	return BoundingBox{Min: a.Min(b), Max: a.Max(b)}
}

// BoxAt returns the box of the given size centered on center. Negative
// size components are treated as zero.
func BoxAt(center, size Vec3) BoundingBox {
	half := Vec3{
		X: math.Max(size.X, 0) / 2,
		Y: math.Max(size.Y, 0) / 2,
		Z: math.Max(size.Z, 0) / 2,
	}
	return BoundingBox{Min: center.Sub(half), Max: center.Add(half)}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Vec3 { return b.Min.Add(b.Max).MulScalar(0.5) }

// Size returns the extent of the box along each axis.
func (b BoundingBox) Size() Vec3 { return b.Max.Sub(b.Min) }

// Volume returns the enclosed volume, never negative.
func (b BoundingBox) Volume() float64 {
	s := b.Size()
	return math.Max(s.X, 0) * math.Max(s.Y, 0) * math.Max(s.Z, 0)
}

// Expand grows the box by margin on every side. A negative margin shrinks
// it, collapsing to the center rather than inverting.
func (b BoundingBox) Expand(margin float64) BoundingBox {
	m := Vec3{X: margin, Y: margin, Z: margin}
	out := BoundingBox{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
	if margin < 0 {
		c := b.Center()
		out.Min = out.Min.Min(c)
		out.Max = out.Max.Max(c)
	}
	return out
}

// Translate returns the box moved by d.
func (b BoundingBox) Translate(d Vec3) BoundingBox {
	return BoundingBox{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Intersects reports whether the boxes touch once both are grown by
// margin. Boundary contact counts as intersecting.
func (b BoundingBox) Intersects(o BoundingBox, margin float64) bool {
	return b.Min.X-margin <= o.Max.X && b.Max.X+margin >= o.Min.X &&
		b.Min.Y-margin <= o.Max.Y && b.Max.Y+margin >= o.Min.Y &&
		b.Min.Z-margin <= o.Max.Z && b.Max.Z+margin >= o.Min.Z
}

// OverlapVolume returns the volume shared by a and b, or 0 when they are
// disjoint or merely touching.
func OverlapVolume(a, b BoundingBox) float64 {
	dx := axisOverlap(a.Min.X, a.Max.X, b.Min.X, b.Max.X)
	dy := axisOverlap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y)
	dz := axisOverlap(a.Min.Z, a.Max.Z, b.Min.Z, b.Max.Z)
	return dx * dy * dz
}

func axisOverlap(aMin, aMax, bMin, bMax float64) float64 {
	return math.Max(0, math.Min(aMax, bMax)-math.Max(aMin, bMin))
}
