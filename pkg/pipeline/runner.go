package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenelayout/pkg/cache"
	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/observability"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout = "layout"
	keyTypeAudit  = "audit"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete align → render pipeline with caching. doc is
// expected to come from Parse, so its settings are already folded into
// opts; they are applied again here for documents built in code.
func (r *Runner) Execute(ctx context.Context, doc scene.Document, opts Options) (*Result, error) {
	opts.ApplyScene(doc.Options)
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	result.Stats.ObjectCount = len(doc.Objects)
	if h, err := cache.HashJSON(doc.Objects); err == nil {
		result.SceneHash = h
	}

	// Stage 1: Align
	alignStart := time.Now()
	l, hit, err := r.Align(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	result.Layout = l
	result.Stats.AlignTime = time.Since(alignStart)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("aligned scene",
		"objects", len(l.Objects),
		"unresolved", l.Stats.Unresolved,
		"cached", hit,
		"duration", result.Stats.AlignTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Align lays out doc with caching and reports whether the layout came from
// the cache. A cached layout keeps the run id it was produced under.
func (r *Runner) Align(ctx context.Context, doc scene.Document, opts Options) (scene.Layout, bool, error) {
	opts.ApplyScene(doc.Options)
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return scene.Layout{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return scene.Layout{}, false, err
	}

	// Compute cache key
	sceneHash, err := cache.HashJSON(doc.Objects)
	if err != nil {
		return scene.Layout{}, false, fmt.Errorf("hash scene: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(sceneHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := scene.UnmarshalLayout(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
			r.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "err", err)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	hooks := observability.Layout()
	hooks.OnAlignStart(ctx, opts.Strategy, len(doc.Objects))
	start := time.Now()
	l, err := GenerateLayout(doc, opts)
	if err != nil {
		hooks.OnAlignComplete(ctx, opts.Strategy, 0, 0, time.Since(start), err)
		return scene.Layout{}, false, err
	}
	hooks.OnAlignComplete(ctx, opts.Strategy, l.Stats.Placed, l.Stats.Unresolved, time.Since(start), nil)

	// Cache the result
	if data, err := scene.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}

	return l, false, nil
}

// Audit runs the collision audit over an existing layout with caching and
// reports whether the records came from the cache. A nil maxOverlap selects
// layout.DefaultMaxOverlapVolume; zero reports any positive overlap.
func (r *Runner) Audit(ctx context.Context, l scene.Layout, maxOverlap *float64) ([]layout.CollisionRecord, bool, error) {
	threshold := layout.DefaultMaxOverlapVolume
	if maxOverlap != nil {
		threshold = *maxOverlap
	}
	if err := validateNonNegative("max_overlap_volume", threshold); err != nil {
		return nil, false, err
	}
	if err := checkLayoutSize(l); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	layoutHash, err := cache.HashJSON(l.Objects)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout: %w", err)
	}
	cacheKey := r.Keyer.AuditKey(layoutHash, threshold)

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var records []layout.CollisionRecord
		if err := json.Unmarshal(data, &records); err == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeAudit)
			return records, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeAudit)

	hooks := observability.Layout()
	hooks.OnAuditStart(ctx, len(l.Objects))
	start := time.Now()
	records := AuditLayout(l, threshold, 0)
	hooks.OnAuditComplete(ctx, len(records), time.Since(start), nil)

	r.Logger.Debug("audited layout",
		"objects", len(l.Objects),
		"records", len(records),
		"duration", time.Since(start))

	if data, err := json.Marshal(records); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLAudit); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeAudit, len(data))
		}
	}

	return records, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
