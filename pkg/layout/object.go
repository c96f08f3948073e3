package layout

import (
	"fmt"
	"math"
)

// DefaultCategory is assigned to objects that do not declare one.
const DefaultCategory = "generic"

// Object is an input record: something with a name and a precomputed
// bounding size that needs a place in the scene.
type Object struct {
	// Name identifies the object; it must be unique within a scene.
	Name string

	// Size is the bounding extent: width on X, height on Y, depth on Z.
	Size Vec3

	// Category groups related objects. Empty means DefaultCategory.
	Category string

	// Preset pins the object to a position for the Custom strategy.
	Preset *Vec3

	// PresetRotation accompanies Preset.
	PresetRotation *Vec3

	// Metadata is carried through untouched.
	Metadata map[string]any
}

// CategoryOrDefault returns the object's category, or DefaultCategory.
func (o Object) CategoryOrDefault() string {
	if o.Category == "" {
		return DefaultCategory
	}
	return o.Category
}

// validate reports why an object cannot be placed, or "" if it can.
func (o Object) validate() string {
	if o.Name == "" {
		return "missing name"
	}
	for _, c := range []float64{o.Size.X, o.Size.Y, o.Size.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return fmt.Sprintf("invalid extents %.3gx%.3gx%.3g", o.Size.X, o.Size.Y, o.Size.Z)
		}
	}
	return ""
}

// Hierarchy is the grouping record attached to a placed object.
type Hierarchy struct {
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
	Level    int      `json:"level"`
}

// PlacedObject is an object with a final position. Position and
// BoundingBox always move together; use moveTo rather than assigning
// either field alone.
type PlacedObject struct {
	Name        string
	Position    Vec3
	Rotation    Vec3
	BoundingBox BoundingBox
	Size        Vec3
	Category    string
	Metadata    map[string]any
	Hierarchy   *Hierarchy
}

func newPlacedObject(o Object, c Candidate) *PlacedObject {
	p := &PlacedObject{
		Name:     o.Name,
		Rotation: c.Rotation,
		Size:     o.Size,
		Category: o.CategoryOrDefault(),
		Metadata: o.Metadata,
	}
	p.moveTo(c.Position)
	return p
}

func (p *PlacedObject) moveTo(pos Vec3) {
	p.Position = pos
	p.BoundingBox = BoxAt(pos, p.Size)
}

// WarningKind classifies a soft failure.
type WarningKind string

const (
	// WarningSkipped marks an object that was left out of the layout.
	WarningSkipped WarningKind = "skipped"

	// WarningUnresolved marks an object accepted while still colliding.
	WarningUnresolved WarningKind = "unresolved"
)

// Warning is a non-fatal problem found while laying out a scene.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Object  string      `json:"object"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Object, w.Message)
}
