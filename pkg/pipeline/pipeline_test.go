package pipeline

import (
	"math"
	"testing"

	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dxf", false},
		{"pdf", false},
		{"xlsx", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"PDF", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "dxf"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"json", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStrategy(t *testing.T) {
	for _, name := range layout.StrategyNames {
		if err := ValidateStrategy(name); err != nil {
			t.Errorf("ValidateStrategy(%q) = %v", name, err)
		}
	}
	for _, name := range []string{"", "spiral", "Grid"} {
		err := ValidateStrategy(name)
		if !errors.Is(err, errors.ErrCodeInvalidStrategy) {
			t.Errorf("ValidateStrategy(%q) = %v, want %s", name, err, errors.ErrCodeInvalidStrategy)
		}
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Strategy != DefaultStrategy {
		t.Errorf("Strategy should be %s, got %s", DefaultStrategy, opts.Strategy)
	}
	if *opts.GridSpacing != layout.DefaultGridSpacing {
		t.Errorf("GridSpacing should be %v, got %v", layout.DefaultGridSpacing, *opts.GridSpacing)
	}
	if *opts.CollisionMargin != layout.DefaultCollisionMargin {
		t.Errorf("CollisionMargin should be %v, got %v", layout.DefaultCollisionMargin, *opts.CollisionMargin)
	}
	if *opts.GroundLevel != 0 {
		t.Errorf("GroundLevel should be 0, got %v", *opts.GroundLevel)
	}
	if opts.CellSize != layout.DefaultCellSize {
		t.Errorf("CellSize should be %v, got %v", layout.DefaultCellSize, opts.CellSize)
	}
	if opts.MaxAttempts != layout.DefaultMaxAttempts {
		t.Errorf("MaxAttempts should be %d, got %d", layout.DefaultMaxAttempts, opts.MaxAttempts)
	}
	if *opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, *opts.Seed)
	}
	if *opts.MaxOverlapVolume != layout.DefaultMaxOverlapVolume {
		t.Errorf("MaxOverlapVolume should be %v, got %v", layout.DefaultMaxOverlapVolume, *opts.MaxOverlapVolume)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestSetLayoutDefaultsKeepsExplicitZero(t *testing.T) {
	opts := Options{GridSpacing: Float(0), CollisionMargin: Float(0)}
	opts.SetLayoutDefaults()
	if *opts.GridSpacing != 0 || *opts.CollisionMargin != 0 {
		t.Errorf("explicit zero overwritten: spacing=%v margin=%v", *opts.GridSpacing, *opts.CollisionMargin)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats should be [json], got %v", opts.Formats)
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"defaults", Options{}, ""},
		{"mixed case strategy", Options{Strategy: " Radial "}, ""},
		{"unknown strategy", Options{Strategy: "spiral"}, errors.ErrCodeInvalidStrategy},
		{"negative spacing", Options{GridSpacing: Float(-1)}, errors.ErrCodeInvalidOption},
		{"nan margin", Options{CollisionMargin: Float(math.NaN())}, errors.ErrCodeInvalidOption},
		{"negative ground is fine", Options{GroundLevel: Float(-2)}, ""},
		{"infinite ground", Options{GroundLevel: Float(math.Inf(1))}, errors.ErrCodeInvalidOption},
		{"negative cell size", Options{CellSize: -1}, errors.ErrCodeInvalidOption},
		{"tiny cell size", Options{CellSize: 0.005}, errors.ErrCodeInvalidOption},
		{"smallest cell size", Options{CellSize: layout.MinCellSize}, ""},
		{"zero overlap threshold", Options{MaxOverlapVolume: Float(0)}, ""},
		{"negative overlap threshold", Options{MaxOverlapVolume: Float(-0.1)}, errors.ErrCodeInvalidOption},
		{"negative attempts", Options{MaxAttempts: -1}, errors.ErrCodeInvalidOption},
		{"negative radius", Options{Radius: -3}, errors.ErrCodeInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateForLayout() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateForLayout() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Strategy: "radial"}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalSeed := opts.Seed
	originalFormats := opts.Formats
	originalSpacing := opts.GridSpacing

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if *opts.Seed != *originalSeed {
		t.Error("Seed changed on second call")
	}
	if len(opts.Formats) != len(originalFormats) {
		t.Error("Formats changed on second call")
	}
	if opts.GridSpacing != originalSpacing {
		t.Error("GridSpacing changed on second call")
	}
}

func TestApplyScene(t *testing.T) {
	s := scene.Settings{
		Strategy:    "clustered",
		GridSpacing: Float(1.5),
		GroundLevel: Float(0.2),
		Seed:        Uint(7),
		RowWidth:    4,
	}

	opts := Options{Strategy: "linear", GroundLevel: Float(0)}
	opts.ApplyScene(s)

	if opts.Strategy != "linear" {
		t.Errorf("explicit strategy overridden: %s", opts.Strategy)
	}
	if *opts.GroundLevel != 0 {
		t.Errorf("explicit ground level overridden: %v", *opts.GroundLevel)
	}
	if opts.GridSpacing == nil || *opts.GridSpacing != 1.5 {
		t.Errorf("GridSpacing not taken from scene: %v", opts.GridSpacing)
	}
	if opts.Seed == nil || *opts.Seed != 7 || opts.RowWidth != 4 {
		t.Errorf("Seed/RowWidth not taken from scene: %v/%v", opts.Seed, opts.RowWidth)
	}
	if opts.CollisionMargin != nil {
		t.Errorf("CollisionMargin should stay unset, got %v", *opts.CollisionMargin)
	}
}

func TestEngineOptions(t *testing.T) {
	opts := Options{Strategy: "grid", RowWidth: 3, GridSpacing: Float(0.25), Seed: Uint(11), Audit: true}
	eo, err := opts.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error: %v", err)
	}

	g, ok := eo.Strategy.(layout.Grid)
	if !ok {
		t.Fatalf("Strategy = %T, want layout.Grid", eo.Strategy)
	}
	if g.RowWidth != 3 {
		t.Errorf("RowWidth = %v, want 3", g.RowWidth)
	}
	if eo.GridSpacing != 0.25 || eo.Seed != 11 || !eo.Audit {
		t.Errorf("EngineOptions() = %+v", eo)
	}
	if eo.CollisionMargin != layout.DefaultCollisionMargin {
		t.Errorf("CollisionMargin = %v, want default", eo.CollisionMargin)
	}
}

func TestEngineStrategyCarriesParameters(t *testing.T) {
	opts := Options{Strategy: "radial", Radius: 5}
	opts.SetLayoutDefaults()
	s, err := opts.EngineStrategy()
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := s.(layout.Radial); !ok || r.Radius != 5 {
		t.Errorf("EngineStrategy() = %#v, want Radial{Radius: 5}", s)
	}

	opts = Options{Strategy: "custom", RowWidth: 2}
	opts.SetLayoutDefaults()
	s, err = opts.EngineStrategy()
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := s.(layout.Custom); !ok || c.Fallback.RowWidth != 2 {
		t.Errorf("EngineStrategy() = %#v, want Custom with row width 2", s)
	}
}

func TestLayoutKeyOptsTracksOptions(t *testing.T) {
	a := Options{}
	a.SetLayoutDefaults()
	b := Options{Seed: Uint(43)}
	b.SetLayoutDefaults()

	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("different seeds should give different key options")
	}

	c := Options{GridSpacing: Float(layout.DefaultGridSpacing)}
	c.SetLayoutDefaults()
	if a.LayoutKeyOpts() != c.LayoutKeyOpts() {
		t.Error("explicit default should key like the implicit default")
	}
}

func TestExplicitZeroSeedAndThreshold(t *testing.T) {
	opts := Options{Seed: Uint(0), MaxOverlapVolume: Float(0)}
	eo, err := opts.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error: %v", err)
	}
	if eo.Seed != 0 {
		t.Errorf("Seed = %d, want explicit 0", eo.Seed)
	}
	if eo.MaxOverlapVolume != 0 {
		t.Errorf("MaxOverlapVolume = %v, want explicit 0", eo.MaxOverlapVolume)
	}

	def := Options{}
	def.SetLayoutDefaults()
	if opts.LayoutKeyOpts() == def.LayoutKeyOpts() {
		t.Error("seed 0 should key differently from the default seed")
	}
}
