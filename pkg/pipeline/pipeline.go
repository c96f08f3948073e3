// Package pipeline provides the core scene layout pipeline for scenelayout.
//
// This package implements the complete parse → align → render pipeline that
// is shared by the CLI and the HTTP API. By centralizing this logic, both
// entry points apply the same defaults, cache keys and validation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a scene document (JSON, TOML or an XLSX object list)
//  2. Align: Place every object and optionally audit the result
//  3. Render: Export the layout (JSON, DXF, PDF, XLSX, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Strategy: "radial",
//	    Formats:  []string{"json", "dxf"},
//	}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plan := result.Artifacts["dxf"]
//
// Run individual stages:
//
//	// Align only
//	l, hit, err := runner.Align(ctx, doc, opts)
//
//	// Audit an existing layout
//	records, hit, err := runner.Audit(ctx, l, pipeline.Float(0.001))
//
//	// Render an existing layout
//	artifacts, err := pipeline.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenelayout/pkg/cache"
	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultStrategy is the placement strategy used when none is given.
	DefaultStrategy = layout.StrategyGrid

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = layout.DefaultSeed

	// DefaultMaxObjects bounds the size of a single scene. The audit is
	// quadratic, so the API refuses anything larger.
	DefaultMaxObjects = 10000
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDXF  = "dxf"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// FormatNames lists every output format in documentation order.
var FormatNames = []string{FormatJSON, FormatDXF, FormatPDF, FormatXLSX, FormatDOT, FormatSVG}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDXF:  true,
	FormatPDF:  true,
	FormatXLSX: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidStrategies is the set of supported placement strategies.
var ValidStrategies = map[string]bool{
	layout.StrategyGrid:      true,
	layout.StrategyRadial:    true,
	layout.StrategyLinear:    true,
	layout.StrategyClustered: true,
	layout.StrategyCustom:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
//
// GridSpacing, CollisionMargin, GroundLevel, Seed and MaxOverlapVolume are
// pointers because zero is a meaningful value for each; nil means "use the
// scene file or default". A zero MaxOverlapVolume reports any positive
// overlap.
type Options struct {
	// Layout options
	Strategy        string   `json:"strategy,omitempty"`
	GridSpacing     *float64 `json:"grid_spacing,omitempty"`
	CollisionMargin *float64 `json:"collision_margin,omitempty"`
	GroundLevel     *float64 `json:"ground_level,omitempty"`
	CellSize        float64  `json:"cell_size,omitempty"`
	MaxAttempts     int      `json:"max_attempts,omitempty"`
	JitterRange     float64  `json:"jitter_range,omitempty"`
	RowWidth        float64  `json:"row_width,omitempty"`
	Radius          float64  `json:"radius,omitempty"`
	Seed            *uint64  `json:"seed,omitempty"`

	// Audit options
	Audit            bool     `json:"audit,omitempty"`
	MaxOverlapVolume *float64 `json:"max_overlap_volume,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cached layouts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger       *log.Logger `json:"-"`
	AuditWorkers int         `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Float returns a pointer to v, for the optional fields of Options.
func Float(v float64) *float64 { return &v }

// Uint returns a pointer to v, for the optional fields of Options.
func Uint(v uint64) *uint64 { return &v }

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the aligned scene.
	Layout scene.Layout

	// SceneHash is the content hash of the input objects.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ObjectCount int
	AlignTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a strategy name is valid.
func ValidateStrategy(name string) error {
	if !ValidStrategies[name] {
		return errors.New(errors.ErrCodeInvalidStrategy, "invalid strategy: %q (must be one of: %s)", name, strings.Join(layout.StrategyNames, ", "))
	}
	return nil
}

func validateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "%s must be a non-negative number, got %v", name, v)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ApplyScene fills options left unset from the settings carried by a scene
// file. Explicit options always win.
func (o *Options) ApplyScene(s scene.Settings) {
	if o.Strategy == "" {
		o.Strategy = s.Strategy
	}
	if o.GridSpacing == nil {
		o.GridSpacing = s.GridSpacing
	}
	if o.CollisionMargin == nil {
		o.CollisionMargin = s.CollisionMargin
	}
	if o.GroundLevel == nil {
		o.GroundLevel = s.GroundLevel
	}
	if o.CellSize == 0 {
		o.CellSize = s.CellSize
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = s.MaxAttempts
	}
	if o.JitterRange == 0 {
		o.JitterRange = s.JitterRange
	}
	if o.RowWidth == 0 {
		o.RowWidth = s.RowWidth
	}
	if o.Radius == 0 {
		o.Radius = s.Radius
	}
	if o.Seed == nil {
		o.Seed = s.Seed
	}
	if o.MaxOverlapVolume == nil {
		o.MaxOverlapVolume = s.MaxOverlapVolume
	}
}

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Strategy = strings.ToLower(strings.TrimSpace(o.Strategy))
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.GridSpacing == nil {
		o.GridSpacing = Float(layout.DefaultGridSpacing)
	}
	if o.CollisionMargin == nil {
		o.CollisionMargin = Float(layout.DefaultCollisionMargin)
	}
	if o.GroundLevel == nil {
		o.GroundLevel = Float(0)
	}
	if o.CellSize == 0 {
		o.CellSize = layout.DefaultCellSize
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = layout.DefaultMaxAttempts
	}
	if o.JitterRange == 0 {
		o.JitterRange = layout.DefaultJitterRange
	}
	if o.RowWidth == 0 {
		o.RowWidth = layout.DefaultRowWidth
	}
	if o.Radius == 0 {
		o.Radius = layout.DefaultRadius
	}
	if o.Seed == nil {
		o.Seed = Uint(DefaultSeed)
	}
	if o.MaxOverlapVolume == nil {
		o.MaxOverlapVolume = Float(layout.DefaultMaxOverlapVolume)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"grid_spacing", *o.GridSpacing},
		{"collision_margin", *o.CollisionMargin},
		{"cell_size", o.CellSize},
		{"jitter_range", o.JitterRange},
		{"row_width", o.RowWidth},
		{"radius", o.Radius},
		{"max_overlap_volume", *o.MaxOverlapVolume},
	} {
		if err := validateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if o.CellSize < layout.MinCellSize {
		return errors.New(errors.ErrCodeInvalidOption, "cell_size must be at least %v, got %v", layout.MinCellSize, o.CellSize)
	}
	if g := *o.GroundLevel; math.IsNaN(g) || math.IsInf(g, 0) {
		return errors.New(errors.ErrCodeInvalidOption, "ground_level must be a finite number, got %v", g)
	}
	if o.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "max_attempts must not be negative, got %d", o.MaxAttempts)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// EngineStrategy builds the configured layout.Strategy.
func (o *Options) EngineStrategy() (layout.Strategy, error) {
	s, err := layout.ParseStrategy(o.Strategy)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStrategy, err, "strategy")
	}
	switch s := s.(type) {
	case layout.Grid:
		s.RowWidth = o.RowWidth
		return s, nil
	case layout.Radial:
		s.Radius = o.Radius
		return s, nil
	case layout.Custom:
		s.Fallback.RowWidth = o.RowWidth
		return s, nil
	}
	return s, nil
}

// EngineOptions converts validated options into layout.Options.
func (o *Options) EngineOptions() (layout.Options, error) {
	if err := o.ValidateForLayout(); err != nil {
		return layout.Options{}, err
	}
	s, err := o.EngineStrategy()
	if err != nil {
		return layout.Options{}, err
	}
	return layout.Options{
		Strategy:         s,
		GridSpacing:      *o.GridSpacing,
		CollisionMargin:  *o.CollisionMargin,
		GroundLevel:      *o.GroundLevel,
		CellSize:         o.CellSize,
		MaxAttempts:      o.MaxAttempts,
		JitterRange:      o.JitterRange,
		Seed:             *o.Seed,
		Audit:            o.Audit,
		MaxOverlapVolume: *o.MaxOverlapVolume,
		AuditWorkers:     o.AuditWorkers,
		Logger:           o.Logger,
	}, nil
}

// LayoutKeyOpts returns cache key options for layout computation.
// Call after ValidateForLayout so defaults are filled in.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	var seed uint64
	if o.Seed != nil {
		seed = *o.Seed
	}
	return cache.LayoutKeyOpts{
		Strategy:        o.Strategy,
		GridSpacing:     deref(o.GridSpacing),
		CollisionMargin: deref(o.CollisionMargin),
		GroundLevel:     deref(o.GroundLevel),
		CellSize:        o.CellSize,
		MaxAttempts:     o.MaxAttempts,
		JitterRange:     o.JitterRange,
		RowWidth:        o.RowWidth,
		Radius:          o.Radius,
		Seed:            seed,
		Audit:           o.Audit,
		MaxOverlap:      deref(o.MaxOverlapVolume),
	}
}

// String summarizes the layout options for log lines.
func (o *Options) String() string {
	seed := "default"
	if o.Seed != nil {
		seed = strconv.FormatUint(*o.Seed, 10)
	}
	return fmt.Sprintf("strategy=%s seed=%s audit=%t", o.Strategy, seed, o.Audit)
}
