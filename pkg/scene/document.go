package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/layout"
)

// Metadata keys recognized on input objects.
const (
	MetaObjectType = "object_type"
	MetaPosition   = "position"
	MetaRotation   = "rotation"
)

// Document is a scene description: layout settings plus the objects to
// place. It is the input format for JSON and TOML scene files.
type Document struct {
	Options Settings     `json:"options,omitempty" toml:"options"`
	Objects []ObjectSpec `json:"objects" toml:"objects"`
}

// Settings are layout options carried by a scene file. Pointer fields
// distinguish "unset" from an explicit zero.
type Settings struct {
	Strategy         string   `json:"strategy,omitempty" toml:"strategy"`
	GridSpacing      *float64 `json:"grid_spacing,omitempty" toml:"grid_spacing"`
	CollisionMargin  *float64 `json:"collision_margin,omitempty" toml:"collision_margin"`
	GroundLevel      *float64 `json:"ground_level,omitempty" toml:"ground_level"`
	CellSize         float64  `json:"cell_size,omitempty" toml:"cell_size"`
	MaxAttempts      int      `json:"max_attempts,omitempty" toml:"max_attempts"`
	JitterRange      float64  `json:"jitter_range,omitempty" toml:"jitter_range"`
	RowWidth         float64  `json:"row_width,omitempty" toml:"row_width"`
	Radius           float64  `json:"radius,omitempty" toml:"radius"`
	Seed             *uint64  `json:"seed,omitempty" toml:"seed"`
	MaxOverlapVolume *float64 `json:"max_overlap_volume,omitempty" toml:"max_overlap_volume"`
}

// ObjectSpec describes one input object. Its extents come from the first
// of Size, Vertices or Primitive that is set; an object with none of them
// has zero extents and is skipped by the engine.
type ObjectSpec struct {
	Name      string         `json:"name" toml:"name"`
	Category  string         `json:"category,omitempty" toml:"category"`
	Size      *Size          `json:"size,omitempty" toml:"size"`
	Vertices  [][3]float64   `json:"vertices,omitempty" toml:"vertices"`
	Primitive *Primitive     `json:"primitive,omitempty" toml:"primitive"`
	Position  *[3]float64    `json:"position,omitempty" toml:"position"`
	Rotation  *[3]float64    `json:"rotation,omitempty" toml:"rotation"`
	Metadata  map[string]any `json:"metadata,omitempty" toml:"metadata"`
}

// Size is a precomputed bounding size in meters.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Depth  float64 `json:"depth" toml:"depth"`
	Height float64 `json:"height" toml:"height"`
}

// Vec converts s to layout axes: width on X, height on Y, depth on Z.
func (s Size) Vec() layout.Vec3 {
	return layout.Vec3{X: s.Width, Y: s.Height, Z: s.Depth}
}

// Extents returns the bounding size of the object.
func (o ObjectSpec) Extents() (layout.Vec3, error) {
	switch {
	case o.Size != nil:
		return o.Size.Vec(), nil
	case len(o.Vertices) > 0:
		return vertexExtents(o.Vertices), nil
	case o.Primitive != nil:
		v, err := o.Primitive.Extents()
		if err != nil {
			return layout.Vec3{}, fmt.Errorf("object %q: %w", o.Name, err)
		}
		return v, nil
	}
	return layout.Vec3{}, nil
}

func vertexExtents(vs [][3]float64) layout.Vec3 {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range vs {
		for i := range 3 {
			lo[i] = math.Min(lo[i], v[i])
			hi[i] = math.Max(hi[i], v[i])
		}
	}
	return layout.Vec3{X: hi[0] - lo[0], Y: hi[1] - lo[1], Z: hi[2] - lo[2]}
}

// CategoryName returns the explicit category, else metadata.object_type,
// else "".
func (o ObjectSpec) CategoryName() string {
	if o.Category != "" {
		return o.Category
	}
	if t, ok := o.Metadata[MetaObjectType].(string); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

// Object converts the spec into an engine input. Position, or failing
// that metadata.position, becomes the Custom preset.
func (o ObjectSpec) Object() (layout.Object, error) {
	if err := errors.ValidateObjectName(o.Name); err != nil {
		return layout.Object{}, err
	}
	cat := o.CategoryName()
	if err := errors.ValidateCategory(cat); err != nil {
		return layout.Object{}, err
	}
	size, err := o.Extents()
	if err != nil {
		return layout.Object{}, err
	}

	obj := layout.Object{
		Name:     o.Name,
		Size:     size,
		Category: cat,
		Metadata: o.Metadata,
	}
	if o.Position != nil {
		p := fromArray(*o.Position)
		obj.Preset = &p
	} else if p, ok := vecFromAny(o.Metadata[MetaPosition]); ok {
		obj.Preset = &p
	}
	if o.Rotation != nil {
		r := fromArray(*o.Rotation)
		obj.PresetRotation = &r
	} else if r, ok := vecFromAny(o.Metadata[MetaRotation]); ok {
		obj.PresetRotation = &r
	}
	return obj, nil
}

// LayoutObjects converts every spec, stopping at the first malformed one.
// Objects with missing names or zero extents are passed through; the
// engine reports them as skipped.
func (d Document) LayoutObjects() ([]layout.Object, error) {
	out := make([]layout.Object, 0, len(d.Objects))
	for i, spec := range d.Objects {
		o, err := spec.Object()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "objects[%d]", i)
		}
		out = append(out, o)
	}
	return out, nil
}

func fromArray(a [3]float64) layout.Vec3 {
	return layout.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func toArray(v layout.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// vecFromAny decodes a loosely typed vector as found in metadata: a
// three-element list or an {x, y, z} table.
func vecFromAny(v any) (layout.Vec3, bool) {
	switch t := v.(type) {
	case []any:
		if len(t) != 3 {
			return layout.Vec3{}, false
		}
		var out [3]float64
		for i, c := range t {
			f, ok := toFloat(c)
			if !ok {
				return layout.Vec3{}, false
			}
			out[i] = f
		}
		return fromArray(out), true
	case []float64:
		if len(t) != 3 {
			return layout.Vec3{}, false
		}
		return layout.Vec3{X: t[0], Y: t[1], Z: t[2]}, true
	case map[string]any:
		var out [3]float64
		for i, k := range []string{"x", "y", "z"} {
			f, ok := toFloat(t[k])
			if !ok {
				return layout.Vec3{}, false
			}
			out[i] = f
		}
		return fromArray(out), true
	}
	return layout.Vec3{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
