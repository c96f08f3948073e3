package layout

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxOverlapVolume is the overlap, in cubic meters, above which the
// auditor reports a pair.
const DefaultMaxOverlapVolume = 0.001

// Severity grades a CollisionRecord.
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityOverlap Severity = "overlap"
)

// CollisionRecord describes an unordered pair of overlapping objects.
type CollisionRecord struct {
	A             string   `json:"a"`
	B             string   `json:"b"`
	OverlapVolume float64  `json:"overlap_volume"`
	Severity      Severity `json:"severity"`
}

// Classify grades an overlap volume against threshold.
func Classify(volume, threshold float64) Severity {
	if volume > threshold {
		return SeverityOverlap
	}
	return SeverityNone
}

// Inspect measures the overlap of a and b and grades it against threshold.
func Inspect(a, b PlacedObject, threshold float64) CollisionRecord {
	v := OverlapVolume(a.BoundingBox, b.BoundingBox)
	return CollisionRecord{A: a.Name, B: b.Name, OverlapVolume: v, Severity: Classify(v, threshold)}
}

// Auditor checks every pair of a finished layout. It is a QA pass, O(n²),
// and independent from the spatial index used during placement.
type Auditor struct {
	MaxOverlapVolume float64
	Workers          int
}

type indexedRecord struct {
	i, j int
	rec  CollisionRecord
}

// Audit returns one record per pair whose overlap exceeds
// MaxOverlapVolume, ordered by the pair's positions in objs. Rows of the
// pair matrix are spread across Workers goroutines; objs is only read.
func (a Auditor) Audit(objs []PlacedObject) []CollisionRecord {
	threshold := a.MaxOverlapVolume
	if threshold < 0 {
		threshold = 0
	}
	workers := a.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, min(workers, len(objs)))

	shards := make([][]indexedRecord, workers)
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			for i := w; i < len(objs); i += workers {
				for j := i + 1; j < len(objs); j++ {
					rec := Inspect(objs[i], objs[j], threshold)
					if rec.Severity != SeverityNone {
						shards[w] = append(shards[w], indexedRecord{i: i, j: j, rec: rec})
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []indexedRecord
	for _, s := range shards {
		all = append(all, s...)
	}
	slices.SortFunc(all, func(x, y indexedRecord) int {
		if x.i != y.i {
			return x.i - y.i
		}
		return x.j - y.j
	})

	out := make([]CollisionRecord, len(all))
	for k, r := range all {
		out[k] = r.rec
	}
	return out
}

// AuditSummary aggregates a set of records.
type AuditSummary struct {
	Pairs        int     `json:"pairs"`
	Records      int     `json:"records"`
	TotalOverlap float64 `json:"total_overlap"`
	MaxOverlap   float64 `json:"max_overlap"`
	Worst        string  `json:"worst,omitempty"`
}

// Summarize reduces records for n audited objects to a summary.
func Summarize(n int, records []CollisionRecord) AuditSummary {
	s := AuditSummary{Pairs: n * (n - 1) / 2, Records: len(records)}
	if n < 2 {
		s.Pairs = 0
	}
	for _, r := range records {
		s.TotalOverlap += r.OverlapVolume
		if r.OverlapVolume > s.MaxOverlap {
			s.MaxOverlap = r.OverlapVolume
			s.Worst = r.A + "/" + r.B
		}
	}
	return s
}
