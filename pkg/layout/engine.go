package layout

import (
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultGridSpacing is the gap strategies leave between neighbors.
	DefaultGridSpacing = 0.5

	// DefaultCollisionMargin is the clearance the resolver enforces.
	DefaultCollisionMargin = 0.1

	// DefaultSeed seeds the jitter source when none is injected.
	DefaultSeed = uint64(42)
)

// Options configures a single Align call.
//
// GridSpacing, CollisionMargin, GroundLevel, Seed and MaxOverlapVolume are
// used as given, zero included; start from DefaultOptions to get the
// documented defaults. A zero MaxOverlapVolume reports any positive
// overlap, a negative one selects DefaultMaxOverlapVolume. The remaining
// numeric fields fall back to their defaults when non-positive.
type Options struct {
	Strategy        Strategy
	GridSpacing     float64
	CollisionMargin float64
	GroundLevel     float64
	CellSize        float64
	MaxAttempts     int
	JitterRange     float64

	// Rand drives collision jitter. When nil a PCG source seeded with Seed
	// is used, so equal seeds give equal layouts.
	Rand *rand.Rand
	Seed uint64

	// Audit runs the pairwise collision audit on the finished layout.
	Audit            bool
	MaxOverlapVolume float64
	AuditWorkers     int

	Logger *log.Logger
}

// DefaultOptions returns Options populated with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Strategy:         Grid{RowWidth: DefaultRowWidth},
		GridSpacing:      DefaultGridSpacing,
		CollisionMargin:  DefaultCollisionMargin,
		CellSize:         DefaultCellSize,
		MaxAttempts:      DefaultMaxAttempts,
		JitterRange:      DefaultJitterRange,
		Seed:             DefaultSeed,
		MaxOverlapVolume: DefaultMaxOverlapVolume,
	}
}

func (o Options) withDefaults() Options {
	if o.Strategy == nil {
		o.Strategy = Grid{RowWidth: DefaultRowWidth}
	}
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.JitterRange <= 0 {
		o.JitterRange = DefaultJitterRange
	}
	if o.Rand == nil {
		o.Rand = NewRand(o.Seed)
	}
	if o.MaxOverlapVolume < 0 || math.IsNaN(o.MaxOverlapVolume) {
		o.MaxOverlapVolume = DefaultMaxOverlapVolume
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// NewRand returns the deterministic jitter source used for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Result is the outcome of Align.
type Result struct {
	Objects    []PlacedObject
	Groups     []Group
	Warnings   []Warning
	Collisions []CollisionRecord
	Stats      Stats
}

// Stats summarizes an Align run.
type Stats struct {
	Input      int
	Placed     int
	Skipped    int
	Unresolved int
	Retries    int
	Cells      int
	Duration   time.Duration
}

// Unresolved returns the warnings for objects left colliding.
func (r Result) Unresolved() []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == WarningUnresolved {
			out = append(out, w)
		}
	}
	return out
}

// Align lays out objs from scratch. Any position an object may carry from a
// previous run is ignored; only Custom presets are honored. Align never
// fails: invalid objects are skipped and unresolved collisions are kept,
// both reported as warnings.
func Align(objs []Object, opts Options) Result {
	start := time.Now()
	opts = opts.withDefaults()
	logger := opts.Logger

	logger.Debug("aligning scene",
		"objects", len(objs),
		"strategy", opts.Strategy.Name(),
		"cell_size", opts.CellSize)

	var res Result
	res.Stats.Input = len(objs)
	valid := make([]Object, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	for _, o := range objs {
		reason := o.validate()
		if reason == "" && seen[o.Name] {
			reason = "duplicate name"
		}
		if reason != "" {
			logger.Warn("skipping object", "name", o.Name, "reason", reason)
			res.Warnings = append(res.Warnings, Warning{Kind: WarningSkipped, Object: o.Name, Message: reason})
			res.Stats.Skipped++
			continue
		}
		seen[o.Name] = true
		valid = append(valid, o)
	}

	cands := Candidates(opts.Strategy, valid, Params{Spacing: opts.GridSpacing, GroundLevel: opts.GroundLevel})

	resolver := Resolver{
		Index:       NewSpatialIndex(opts.CellSize),
		Margin:      opts.CollisionMargin,
		MaxAttempts: opts.MaxAttempts,
		JitterRange: opts.JitterRange,
		Rand:        opts.Rand,
	}
	res.Objects = make([]PlacedObject, 0, len(valid))
	for i, o := range valid {
		r := resolver.Place(o, cands[i])
		res.Stats.Retries += r.Attempts
		if !r.Resolved {
			logger.Warn("could not resolve collision", "name", o.Name, "blocker", r.Blocker, "attempts", r.Attempts)
			res.Warnings = append(res.Warnings, Warning{
				Kind:    WarningUnresolved,
				Object:  o.Name,
				Message: "still overlaps " + r.Blocker + " after max attempts",
			})
			res.Stats.Unresolved++
		}
		res.Objects = append(res.Objects, *r.Object)
	}
	res.Stats.Placed = len(res.Objects)
	res.Stats.Cells = resolver.Index.CellCount()

	res.Groups = BuildHierarchy(res.Objects)

	if opts.Audit {
		res.Collisions = Auditor{MaxOverlapVolume: opts.MaxOverlapVolume, Workers: opts.AuditWorkers}.Audit(res.Objects)
	}

	res.Stats.Duration = time.Since(start)
	logger.Debug("aligned scene",
		"placed", res.Stats.Placed,
		"skipped", res.Stats.Skipped,
		"unresolved", res.Stats.Unresolved,
		"retries", res.Stats.Retries,
		"duration", res.Stats.Duration)
	return res
}

// CheckCollisions audits already positioned objects, wherever they came
// from. A zero maxOverlap reports any positive overlap; a negative one
// selects DefaultMaxOverlapVolume.
func CheckCollisions(objs []PlacedObject, maxOverlap float64) []CollisionRecord {
	if maxOverlap < 0 || math.IsNaN(maxOverlap) {
		maxOverlap = DefaultMaxOverlapVolume
	}
	return Auditor{MaxOverlapVolume: maxOverlap}.Audit(objs)
}
