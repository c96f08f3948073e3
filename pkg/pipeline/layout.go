package pipeline

import (
	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout aligns every object of doc without touching any cache.
// opts is used as given; call ApplyScene first to honor the document's own
// settings.
//
// The engine never fails. Errors come from invalid options or from
// objects that cannot be converted (bad names, unknown primitives).
func GenerateLayout(doc scene.Document, opts Options) (scene.Layout, error) {
	if err := checkSize(doc); err != nil {
		return scene.Layout{}, err
	}
	engineOpts, err := opts.EngineOptions()
	if err != nil {
		return scene.Layout{}, err
	}
	objs, err := doc.LayoutObjects()
	if err != nil {
		return scene.Layout{}, err
	}

	res := layout.Align(objs, engineOpts)
	l := scene.NewLayout(res, opts.Strategy, engineOpts.Seed)
	if opts.Audit {
		s := layout.Summarize(len(res.Objects), res.Collisions)
		l.Summary = &s
	}
	return l, nil
}

// =============================================================================
// Audit
// =============================================================================

// AuditLayout runs the pairwise collision audit over a finished layout.
// A zero maxOverlap reports any positive overlap; a negative one selects
// layout.DefaultMaxOverlapVolume.
func AuditLayout(l scene.Layout, maxOverlap float64, workers int) []layout.CollisionRecord {
	if maxOverlap < 0 {
		maxOverlap = layout.DefaultMaxOverlapVolume
	}
	return layout.Auditor{MaxOverlapVolume: maxOverlap, Workers: workers}.Audit(l.Placed())
}
