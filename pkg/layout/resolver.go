package layout

import "math/rand/v2"

const (
	// DefaultMaxAttempts bounds the jitter retries per object.
	DefaultMaxAttempts = 100

	// DefaultJitterRange is the largest planar offset, per axis, applied on
	// a single retry.
	DefaultJitterRange = 1.0
)

// Resolver turns candidates into final placements, one object at a time,
// in the order Place is called. An object is only ever moved around
// objects placed before it.
type Resolver struct {
	Index       *SpatialIndex
	Margin      float64
	MaxAttempts int
	JitterRange float64
	Rand        *rand.Rand
}

// Resolution describes how a single placement went.
type Resolution struct {
	Object   *PlacedObject
	Attempts int
	Resolved bool
	Blocker  string // last object still in the way when unresolved
}

// Place positions o at c, nudging it on the X/Z plane until nothing already
// in the index lies within Margin. When the attempt budget runs out the last
// position is kept anyway and Resolved is false. Either way the object is
// inserted into the index before Place returns.
func (r *Resolver) Place(o Object, c Candidate) Resolution {
	p := newPlacedObject(o, c)
	res := Resolution{Object: p}
	for {
		blocker := r.blocking(p)
		if blocker == nil {
			res.Resolved = true
			res.Blocker = ""
			break
		}
		res.Blocker = blocker.Name
		if res.Attempts >= r.MaxAttempts {
			break
		}
		res.Attempts++
		p.moveTo(p.Position.Add(r.jitter()))
	}
	r.Index.Insert(p)
	return res
}

func (r *Resolver) blocking(p *PlacedObject) *PlacedObject {
	for _, other := range r.Index.Query(p.BoundingBox, r.Margin) {
		if other.BoundingBox.Intersects(p.BoundingBox, r.Margin) {
			return other
		}
	}
	return nil
}

// jitter returns a random offset on X and Z; Y is left alone so objects
// stay on the ground plane.
func (r *Resolver) jitter() Vec3 {
	return Vec3{
		X: (r.Rand.Float64()*2 - 1) * r.JitterRange,
		Z: (r.Rand.Float64()*2 - 1) * r.JitterRange,
	}
}
