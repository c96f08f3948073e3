package layout

import (
	"fmt"
	"math"
	"strings"
)

// Strategy names accepted by ParseStrategy.
const (
	StrategyGrid      = "grid"
	StrategyRadial    = "radial"
	StrategyLinear    = "linear"
	StrategyClustered = "clustered"
	StrategyCustom    = "custom"
)

// StrategyNames lists every strategy in documentation order.
var StrategyNames = []string{StrategyGrid, StrategyRadial, StrategyLinear, StrategyClustered, StrategyCustom}

const (
	// DefaultRowWidth is the X extent after which Grid starts a new row.
	DefaultRowWidth = 10.0

	// DefaultRadius is the ring radius used by Radial.
	DefaultRadius = 3.0
)

// Strategy produces candidate positions before collision resolution. The
// set of strategies is closed: Grid, Radial, Linear, Clustered and Custom
// are the only implementations, and Candidates switches over all of them.
type Strategy interface {
	Name() string
	strategy()
}

// Grid packs objects left to right along X and wraps to a new row along
// Z once the row grows past RowWidth.
type Grid struct {
	RowWidth float64
}

// Radial spaces objects evenly on a ring of Radius, each turned to face
// the center.
type Radial struct {
	Radius float64
}

// Linear lines objects up along X.
type Linear struct{}

// Clustered gives every category its own column along Z, with columns
// side by side along X.
type Clustered struct{}

// Custom keeps preset positions and packs the rest with Fallback.
type Custom struct {
	Fallback Grid
}

func (Grid) Name() string      { return StrategyGrid }
func (Radial) Name() string    { return StrategyRadial }
func (Linear) Name() string    { return StrategyLinear }
func (Clustered) Name() string { return StrategyClustered }
func (Custom) Name() string    { return StrategyCustom }

func (Grid) strategy()      {}
func (Radial) strategy()    {}
func (Linear) strategy()    {}
func (Clustered) strategy() {}
func (Custom) strategy()    {}

// ParseStrategy maps a strategy name to its default configuration. The
// empty string selects Grid.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyGrid:
		return Grid{RowWidth: DefaultRowWidth}, nil
	case StrategyRadial:
		return Radial{Radius: DefaultRadius}, nil
	case StrategyLinear:
		return Linear{}, nil
	case StrategyClustered:
		return Clustered{}, nil
	case StrategyCustom:
		return Custom{Fallback: Grid{RowWidth: DefaultRowWidth}}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (must be one of: %s)", name, strings.Join(StrategyNames, ", "))
}

// Candidate is a proposed pose for one object.
type Candidate struct {
	Position Vec3
	Rotation Vec3
}

// Params are the placement inputs shared by every strategy.
type Params struct {
	Spacing     float64
	GroundLevel float64
}

// Candidates returns one candidate per object, in input order. It never
// looks at collisions; the only source of ordering is the input slice.
// A nil strategy behaves like Grid.
func Candidates(s Strategy, objs []Object, p Params) []Candidate {
	switch s := s.(type) {
	case nil:
		return Grid{}.place(objs, p)
	case Grid:
		return s.place(objs, p)
	case Radial:
		return s.place(objs, p)
	case Linear:
		return s.place(objs, p)
	case Clustered:
		return s.place(objs, p)
	case Custom:
		return s.place(objs, p)
	default:
		panic(fmt.Sprintf("layout: unhandled strategy %T", s))
	}
}

func restingY(o Object, p Params) float64 { return p.GroundLevel + o.Size.Y/2 }

func (g Grid) place(objs []Object, p Params) []Candidate {
	rowWidth := g.RowWidth
	if rowWidth <= 0 {
		rowWidth = DefaultRowWidth
	}
	out := make([]Candidate, len(objs))
	var x, z, rowDepth float64
	for i, o := range objs {
		out[i].Position = Vec3{X: x + o.Size.X/2, Y: restingY(o, p), Z: z + o.Size.Z/2}
		x += o.Size.X + p.Spacing
		rowDepth = math.Max(rowDepth, o.Size.Z)
		if x > rowWidth {
			x = 0
			z += rowDepth + p.Spacing
			rowDepth = 0
		}
	}
	return out
}

func (r Radial) place(objs []Object, p Params) []Candidate {
	radius := r.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	var step float64
	if len(objs) > 0 {
		step = 2 * math.Pi / float64(len(objs))
	}
	out := make([]Candidate, len(objs))
	for i, o := range objs {
		angle := float64(i) * step
		out[i] = Candidate{
			Position: Vec3{X: radius * math.Cos(angle), Y: restingY(o, p), Z: radius * math.Sin(angle)},
			Rotation: Vec3{Y: -angle},
		}
	}
	return out
}

func (Linear) place(objs []Object, p Params) []Candidate {
	out := make([]Candidate, len(objs))
	var x float64
	for i, o := range objs {
		out[i].Position = Vec3{X: x + o.Size.X/2, Y: restingY(o, p)}
		x += o.Size.X + p.Spacing
	}
	return out
}

func (Clustered) place(objs []Object, p Params) []Candidate {
	out := make([]Candidate, len(objs))
	var x float64
	for _, members := range groupByCategory(objs) {
		var width float64
		for _, i := range members {
			width = math.Max(width, objs[i].Size.X)
		}
		var z float64
		for _, i := range members {
			o := objs[i]
			out[i].Position = Vec3{X: x + width/2, Y: restingY(o, p), Z: z + o.Size.Z/2}
			z += o.Size.Z + p.Spacing
		}
		x += width + 2*p.Spacing
	}
	return out
}

func (c Custom) place(objs []Object, p Params) []Candidate {
	out := make([]Candidate, len(objs))
	var rest []Object
	var restIdx []int
	for i, o := range objs {
		if o.Preset == nil {
			rest = append(rest, o)
			restIdx = append(restIdx, i)
			continue
		}
		out[i].Position = *o.Preset
		if o.PresetRotation != nil {
			out[i].Rotation = *o.PresetRotation
		}
	}
	for j, cand := range c.Fallback.place(rest, p) {
		out[restIdx[j]] = cand
	}
	return out
}

// groupByCategory returns object indices bucketed by category, buckets in
// order of first appearance and members in input order.
func groupByCategory(objs []Object) [][]int {
	pos := make(map[string]int)
	var groups [][]int
	for i, o := range objs {
		cat := o.CategoryOrDefault()
		g, ok := pos[cat]
		if !ok {
			g = len(groups)
			pos[cat] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
