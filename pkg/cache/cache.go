// Package cache stores layout and audit results keyed by their inputs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing
//
// # Keys
//
// A [Keyer] turns inputs into keys. [DefaultKeyer] hashes the scene
// document together with every option that changes the result, so two
// requests share an entry exactly when Align would return the same
// placements. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Entry lifetimes.
const (
	TTLLayout = 7 * 24 * time.Hour
	TTLAudit  = 24 * time.Hour
)

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey keys an Align result by the scene hash and options.
	LayoutKey(sceneHash string, opts LayoutKeyOpts) string

	// AuditKey keys a collision audit by the layout hash and threshold.
	AuditKey(layoutHash string, maxOverlap float64) string
}

// LayoutKeyOpts are the options that change an Align result.
type LayoutKeyOpts struct {
	Strategy        string  `json:"strategy"`
	GridSpacing     float64 `json:"grid_spacing"`
	CollisionMargin float64 `json:"collision_margin"`
	GroundLevel     float64 `json:"ground_level"`
	CellSize        float64 `json:"cell_size"`
	MaxAttempts     int     `json:"max_attempts"`
	JitterRange     float64 `json:"jitter_range"`
	RowWidth        float64 `json:"row_width"`
	Radius          float64 `json:"radius"`
	Seed            uint64  `json:"seed"`
	Audit           bool    `json:"audit"`
	MaxOverlap      float64 `json:"max_overlap"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:" followed by a hash of the inputs.
func (DefaultKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sceneHash, opts)
}

// AuditKey returns "audit:" followed by a hash of the inputs.
func (DefaultKeyer) AuditKey(layoutHash string, maxOverlap float64) string {
	return hashKey("audit", layoutHash, maxOverlap)
}

var _ Keyer = DefaultKeyer{}
