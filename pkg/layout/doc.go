// Package layout assigns non-overlapping world positions to scene objects.
//
// # Overview
//
// Every object arrives with a precomputed bounding size. [Align] turns a
// list of objects into a list of [PlacedObject] values in four steps:
//
//  1. A [Strategy] proposes a candidate pose for every object.
//  2. A [Resolver] walks the candidates in input order, asks a
//     [SpatialIndex] for previously placed neighbors, and jitters the
//     candidate on the ground plane until it clears them.
//  3. [BuildHierarchy] attaches category grouping metadata.
//  4. Optionally, an [Auditor] checks every pair of the finished layout.
//
// # Strategies
//
// The strategy set is closed:
//
//   - [Grid]: rows along X, wrapping along Z past a row width
//   - [Radial]: a ring around the origin, objects facing the center
//   - [Linear]: a single line along X
//   - [Clustered]: one column along Z per category
//   - [Custom]: preset positions, everything else packed by Grid
//
// Strategies are pure functions of the input slice. Input order is the
// only tie-break.
//
// # Ordering and Determinism
//
// Placement is sequential: an object can be deflected by the ones before
// it, never the other way around. Jitter comes from the *rand.Rand in
// [Options]; two runs with equally seeded sources over the same input
// produce the same layout.
//
// # Soft Failures
//
// Nothing in this package returns an error. Objects with a missing name,
// a duplicate name or non-positive extents are skipped. Objects that still
// collide after MaxAttempts retries are kept where they ended up. Both
// cases are reported as [Warning] values in the [Result].
//
// # Auditing
//
// [CheckCollisions] runs the pairwise audit on any positioned list, for
// example a layout produced elsewhere:
//
//	records := layout.CheckCollisions(objs, layout.DefaultMaxOverlapVolume)
//	for _, r := range records {
//	    fmt.Println(r.A, r.B, r.OverlapVolume)
//	}
package layout
