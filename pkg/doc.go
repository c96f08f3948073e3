// Package pkg provides the core libraries for scenelayout.
//
// # Overview
//
// Scenelayout takes the objects of a 3D scene, each with a bounding size,
// and places them on a ground plane so that no two bounding boxes overlap.
// The pkg directory is organized into these areas:
//
//  1. [layout] - The engine: boxes, spatial index, strategies, resolver, audit
//  2. [scene] - Scene documents in, serialized layouts out
//  3. [pipeline] - Orchestration (parse → align → render) with caching
//  4. [export] - DXF, PDF, XLSX, DOT and SVG renderings of a layout
//  5. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	Scene file (JSON, TOML, XLSX)
//	         ↓
//	    [scene] package (decode, derive extents)
//	         ↓
//	    [layout] package (place, resolve collisions, audit)
//	         ↓
//	    [export] package (plans, reports, diagrams)
//
// # Quick Start
//
// Align a scene file and write the layout:
//
//	import (
//	    "github.com/matzehuels/scenelayout/pkg/layout"
//	    "github.com/matzehuels/scenelayout/pkg/scene"
//	)
//
//	doc, _ := scene.ReadFile("room.toml")
//	objs, _ := doc.LayoutObjects()
//
//	opts := layout.DefaultOptions()
//	opts.Strategy, _ = layout.ParseStrategy("radial")
//	res := layout.Align(objs, opts)
//
//	_ = scene.WriteLayoutFile(scene.NewLayout(res, "radial", opts.Seed), "room.layout.json")
//
// # Main Packages
//
// [layout] - Axis-aligned bounding boxes, a uniform-grid spatial index, the
// Grid, Radial, Linear, Clustered and Custom placement strategies, the
// jittering collision resolver and the pairwise collision audit. The engine
// never fails; problems surface as warnings on the result.
//
// [scene] - Scene documents with explicit sizes, vertex lists or parametric
// primitives, and the Layout type that the CLI writes, the API returns and
// the cache stores.
//
// [pipeline] - Options, validation and the cache-backed Runner shared by the
// CLI and the HTTP API.
//
// [export] - Renderings of a finished layout: a DXF plan with one layer per
// category, a PDF plan and audit report, an XLSX workbook and the category
// hierarchy as DOT or SVG.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, Redis and null implementations, plus
// key derivation and retry helpers.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for layout, audit, cache and HTTP events.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/layout
// [scene]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/pipeline
// [export]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/export
// [server]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/scenelayout/pkg/buildinfo
package pkg
