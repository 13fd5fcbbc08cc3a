package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/keyforge/pkg/cache"
	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	"github.com/matzehuels/keyforge/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
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

// Execute runs layout → keyboard → render for m, which must carry an
// alphabet. The keyboard is named name but not stored.
func (r *Runner) Execute(ctx context.Context, name string, m *transition.Matrix, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if m == nil {
		return nil, layout.ErrNilMatrix
	}
	alpha := m.Alphabet()
	if alpha == nil {
		return nil, keyboard.ErrNoAlphabet
	}

	result := &Result{Stats: Stats{Size: m.Size()}}

	// Stage 1: Layout
	layoutStart := time.Now()
	res, hash, hit, err := r.computeLayout(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.MatrixHash = hash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"strategy", res.Strategy,
		"cost", res.Cost,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	kb, err := keyboard.New(name, alpha, res.Grid)
	if err != nil {
		return nil, fmt.Errorf("label layout: %w", err)
	}
	kb.Strategy = res.Strategy
	kb.Cost = res.Cost
	result.Keyboard = kb

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, kb, m, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, m *transition.Matrix, opts Options) (layout.Result, bool, error) {
	res, _, hit, err := r.computeLayout(ctx, m, opts)
	return res, hit, err
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, m *transition.Matrix, opts Options) (layout.Result, error) {
	res, _, _, err := r.computeLayout(ctx, m, opts)
	return res, err
}

func (r *Runner) computeLayout(ctx context.Context, m *transition.Matrix, opts Options) (layout.Result, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, "", false, err
	}
	if m == nil {
		return layout.Result{}, "", false, layout.ErrNilMatrix
	}

	matrixHash, err := cache.HashJSON(m)
	if err != nil {
		return layout.Result{}, "", false, fmt.Errorf("hash matrix: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(matrixHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil && cached.Grid.Validate(m.Size()) == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				return cached, matrixHash, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	res, err := ComputeLayout(ctx, m, opts)
	if err != nil {
		return layout.Result{}, matrixHash, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.DefaultLayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", keyTypeLayout, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}
	return res, matrixHash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, kb *keyboard.Keyboard, m *transition.Matrix, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Artifacts depend on the keyboard document and on the matrix edges.
	keyHash, err := cache.HashJSON(struct {
		Keyboard *keyboard.Keyboard `json:"keyboard"`
		Matrix   *transition.Matrix `json:"matrix"`
	}{kb, m})
	if err != nil {
		return nil, false, fmt.Errorf("hash keyboard: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	rendered, err := Render(ctx, kb, m, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.DefaultArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, kb *keyboard.Keyboard, m *transition.Matrix, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, kb, m, opts)
	return artifacts, err
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
