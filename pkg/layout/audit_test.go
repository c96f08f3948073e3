package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlappingRow(n int) []PlacedObject {
	objs := make([]PlacedObject, n)
	for i := range objs {
		objs[i] = *placedAt(fmt.Sprintf("o%02d", i), Vec3{X: float64(i) * 0.5}, Vec3{X: 1, Y: 1, Z: 1})
	}
	return objs
}

func TestAuditFindsOverlaps(t *testing.T) {
	objs := []PlacedObject{
		*placedAt("a", Vec3{}, Vec3{X: 2, Y: 2, Z: 2}),
		*placedAt("b", Vec3{X: 1}, Vec3{X: 2, Y: 2, Z: 2}),
		*placedAt("c", Vec3{X: 10}, Vec3{X: 1, Y: 1, Z: 1}),
	}
	recs := Auditor{MaxOverlapVolume: DefaultMaxOverlapVolume}.Audit(objs)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].A)
	assert.Equal(t, "b", recs[0].B)
	assert.InDelta(t, 4.0, recs[0].OverlapVolume, eps)
	assert.Equal(t, SeverityOverlap, recs[0].Severity)
}

func TestAuditThreshold(t *testing.T) {
	objs := []PlacedObject{
		*placedAt("a", Vec3{}, Vec3{X: 1, Y: 1, Z: 1}),
		*placedAt("b", Vec3{X: 0.95}, Vec3{X: 1, Y: 1, Z: 1}),
	}
	assert.Len(t, CheckCollisions(objs, 0.01), 1, "0.05 m³ exceeds 0.01")
	assert.Empty(t, CheckCollisions(objs, 0.1), "0.05 m³ is under 0.1")
}

func TestAuditTouchingIsClean(t *testing.T) {
	objs := []PlacedObject{
		*placedAt("a", Vec3{}, Vec3{X: 1, Y: 1, Z: 1}),
		*placedAt("b", Vec3{X: 1}, Vec3{X: 1, Y: 1, Z: 1}),
	}
	assert.Empty(t, CheckCollisions(objs, 0))
}

func TestAuditWorkerCountIsInvisible(t *testing.T) {
	objs := overlappingRow(40)
	want := Auditor{MaxOverlapVolume: DefaultMaxOverlapVolume, Workers: 1}.Audit(objs)
	require.NotEmpty(t, want)

	for _, w := range []int{0, 2, 4, 7, 100} {
		got := Auditor{MaxOverlapVolume: DefaultMaxOverlapVolume, Workers: w}.Audit(objs)
		assert.Equal(t, want, got, "workers=%d", w)
	}
}

func TestAuditOrderedByPair(t *testing.T) {
	recs := CheckCollisions(overlappingRow(5), 0)
	var names []string
	for _, r := range recs {
		names = append(names, r.A+"/"+r.B)
	}
	assert.Equal(t, []string{"o00/o01", "o01/o02", "o02/o03", "o03/o04"}, names)
}

func TestAuditSmallInputs(t *testing.T) {
	assert.Empty(t, CheckCollisions(nil, 0))
	assert.Empty(t, CheckCollisions(overlappingRow(1), 0))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		volume, threshold float64
		want              Severity
	}{
		{0, 0.001, SeverityNone},
		{0.001, 0.001, SeverityNone},
		{0.0011, 0.001, SeverityOverlap},
		{3, 0, SeverityOverlap},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.volume, tt.threshold), "Classify(%v, %v)", tt.volume, tt.threshold)
	}
}

func TestSummarize(t *testing.T) {
	recs := []CollisionRecord{
		{A: "a", B: "b", OverlapVolume: 0.5, Severity: SeverityOverlap},
		{A: "b", B: "c", OverlapVolume: 2, Severity: SeverityOverlap},
	}
	s := Summarize(4, recs)
	assert.Equal(t, 6, s.Pairs)
	assert.Equal(t, 2, s.Records)
	assert.InDelta(t, 2.5, s.TotalOverlap, eps)
	assert.InDelta(t, 2.0, s.MaxOverlap, eps)
	assert.Equal(t, "b/c", s.Worst)

	assert.Equal(t, AuditSummary{}, Summarize(1, nil))
}
