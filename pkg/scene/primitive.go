package scene

import (
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/layout"
)

// Primitive shapes understood by Primitive.Extents.
const (
	ShapeBox      = "box"
	ShapeCylinder = "cylinder"
	ShapeSphere   = "sphere"
	ShapeCone     = "cone"
)

// Primitive is a parametric solid whose bounding size is derived from its
// signed distance field. Dimensions are in meters; cylinders and cones
// stand upright along Y.
type Primitive struct {
	Shape     string  `json:"shape" toml:"shape"`
	Width     float64 `json:"width,omitempty" toml:"width"`
	Depth     float64 `json:"depth,omitempty" toml:"depth"`
	Height    float64 `json:"height,omitempty" toml:"height"`
	Radius    float64 `json:"radius,omitempty" toml:"radius"`
	TopRadius float64 `json:"top_radius,omitempty" toml:"top_radius"`
}

// Solid builds the SDF for p. sdfx is Z-up, so Height maps to Z here.
func (p Primitive) Solid() (sdf.SDF3, error) {
	shape := strings.ToLower(strings.TrimSpace(p.Shape))
	switch shape {
	case ShapeBox:
		if err := positive(shape, "width", p.Width, "depth", p.Depth, "height", p.Height); err != nil {
			return nil, err
		}
		return sdf.Box3D(v3.Vec{X: p.Width, Y: p.Depth, Z: p.Height}, 0)
	case ShapeCylinder:
		if err := positive(shape, "radius", p.Radius, "height", p.Height); err != nil {
			return nil, err
		}
		return sdf.Cylinder3D(p.Height, p.Radius, 0)
	case ShapeSphere:
		if err := positive(shape, "radius", p.Radius); err != nil {
			return nil, err
		}
		return sdf.Sphere3D(p.Radius)
	case ShapeCone:
		if err := positive(shape, "radius", p.Radius, "height", p.Height); err != nil {
			return nil, err
		}
		if p.TopRadius < 0 {
			return nil, errors.New(errors.ErrCodeInvalidGeometry, "cone top_radius must not be negative")
		}
		return sdf.Cone3D(p.Height, p.Radius, p.TopRadius, 0)
	}
	return nil, errors.New(errors.ErrCodeInvalidGeometry, "unknown primitive shape %q", p.Shape)
}

// Extents returns the bounding size of the primitive in layout axes.
func (p Primitive) Extents() (layout.Vec3, error) {
	s, err := p.Solid()
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidGeometry, err, "%s", p.Shape)
		}
		return layout.Vec3{}, err
	}
	bb := s.BoundingBox()
	d := bb.Max.Sub(bb.Min)
	return layout.Vec3{X: d.X, Y: d.Z, Z: d.Y}, nil
}

// positive checks name/value pairs.
func positive(shape string, kv ...any) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if v, _ := kv[i+1].(float64); v <= 0 {
			return errors.New(errors.ErrCodeInvalidGeometry, "%s %s must be positive, got %v", shape, kv[i], kv[i+1])
		}
	}
	return nil
}
