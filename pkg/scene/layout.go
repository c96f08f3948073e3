package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/layout"
)

// =============================================================================
// Layout - Serialized Engine Output
// =============================================================================

// Layout is the serialization format for a finished scene layout. It is
// what the CLI writes, the HTTP API returns and the cache stores.
//
// Vectors are [x, y, z] arrays in meters (rotations in radians), Y up.
type Layout struct {
	// RunID identifies the Align call that produced the layout.
	RunID string `json:"run_id"`

	// Inputs that make the run reproducible.
	Strategy string `json:"strategy"`
	Seed     uint64 `json:"seed"`

	Objects    []Placement              `json:"objects"`
	Groups     []layout.Group           `json:"groups,omitempty"`
	Warnings   []layout.Warning         `json:"warnings,omitempty"`
	Collisions []layout.CollisionRecord `json:"collisions,omitempty"`
	Summary    *layout.AuditSummary     `json:"summary,omitempty"`
	Stats      Stats                    `json:"stats"`
}

// Placement is one placed object.
type Placement struct {
	Name        string            `json:"name"`
	Position    [3]float64        `json:"position"`
	Rotation    [3]float64        `json:"rotation"`
	Size        [3]float64        `json:"size"`
	BoundingBox Box               `json:"bounding_box"`
	Category    string            `json:"category"`
	Hierarchy   *layout.Hierarchy `json:"hierarchy,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// Box is a bounding box with its derived values spelled out for
// consumers that do not want to recompute them.
type Box struct {
	Min    [3]float64 `json:"min"`
	Max    [3]float64 `json:"max"`
	Center [3]float64 `json:"center"`
	Size   [3]float64 `json:"size"`
}

// Stats mirrors layout.Stats with the duration in milliseconds.
type Stats struct {
	Input      int     `json:"input"`
	Placed     int     `json:"placed"`
	Skipped    int     `json:"skipped"`
	Unresolved int     `json:"unresolved"`
	Retries    int     `json:"retries"`
	Cells      int     `json:"cells"`
	DurationMS float64 `json:"duration_ms"`
}

// NewLayout wraps an engine result under a fresh run id.
func NewLayout(res layout.Result, strategy string, seed uint64) Layout {
	l := Layout{
		RunID:      uuid.NewString(),
		Strategy:   strategy,
		Seed:       seed,
		Objects:    make([]Placement, len(res.Objects)),
		Groups:     res.Groups,
		Warnings:   res.Warnings,
		Collisions: res.Collisions,
		Stats: Stats{
			Input:      res.Stats.Input,
			Placed:     res.Stats.Placed,
			Skipped:    res.Stats.Skipped,
			Unresolved: res.Stats.Unresolved,
			Retries:    res.Stats.Retries,
			Cells:      res.Stats.Cells,
			DurationMS: float64(res.Stats.Duration) / float64(time.Millisecond),
		},
	}
	for i, o := range res.Objects {
		l.Objects[i] = NewPlacement(o)
	}
	return l
}

// NewPlacement converts a placed object.
func NewPlacement(o layout.PlacedObject) Placement {
	bb := o.BoundingBox
	return Placement{
		Name:     o.Name,
		Position: toArray(o.Position),
		Rotation: toArray(o.Rotation),
		Size:     toArray(o.Size),
		BoundingBox: Box{
			Min:    toArray(bb.Min),
			Max:    toArray(bb.Max),
			Center: toArray(bb.Center()),
			Size:   toArray(bb.Size()),
		},
		Category:  o.Category,
		Hierarchy: o.Hierarchy,
		Metadata:  o.Metadata,
	}
}

// PlacedObject converts back to the engine type. The bounding box is
// re-derived from position and size; placements without a size fall back
// to their stored bounding box.
func (p Placement) PlacedObject() layout.PlacedObject {
	o := layout.PlacedObject{
		Name:      p.Name,
		Position:  fromArray(p.Position),
		Rotation:  fromArray(p.Rotation),
		Size:      fromArray(p.Size),
		Category:  p.Category,
		Metadata:  p.Metadata,
		Hierarchy: p.Hierarchy,
	}
	if o.Size == (layout.Vec3{}) {
		o.BoundingBox = layout.NewBoundingBox(fromArray(p.BoundingBox.Min), fromArray(p.BoundingBox.Max))
		o.Size = o.BoundingBox.Size()
	} else {
		o.BoundingBox = layout.BoxAt(o.Position, o.Size)
	}
	return o
}

// Placed returns the engine view of every placement, in order.
func (l Layout) Placed() []layout.PlacedObject {
	out := make([]layout.PlacedObject, len(l.Objects))
	for i, p := range l.Objects {
		out[i] = p.PlacedObject()
	}
	return out
}

// Unresolved returns the warnings for objects left colliding.
func (l Layout) Unresolved() []layout.Warning {
	var out []layout.Warning
	for _, w := range l.Warnings {
		if w.Kind == layout.WarningUnresolved {
			out = append(out, w)
		}
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every placement must carry a name.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "unmarshal layout")
	}
	for i, p := range l.Objects {
		if p.Name == "" {
			return Layout{}, errors.New(errors.ErrCodeInvalidDocument, "layout object %d has no name", i)
		}
	}
	return l, nil
}

// WriteLayout encodes l as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
