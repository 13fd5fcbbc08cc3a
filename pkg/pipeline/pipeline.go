// Package pipeline provides the ingest → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Ingest: Count digraphs from text, a word list, or raw rows ([Ingest])
//  2. Layout: Place the characters on a grid ([Runner.ComputeLayout])
//  3. Render: Produce text, JSON, DOT, SVG, PNG or PDF ([Runner.Render])
//
// Each stage can be run independently or as part of the complete pipeline.
// Layouts and artifacts are cached by content hash, so re-running a layout
// for an unchanged matrix is a cache read.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	m, err := pipeline.Ingest(ctx, alpha, pipeline.Source{Text: corpus})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, "mine", m, pipeline.Options{
//	    Strategy: layout.BranchAndBound,
//	    Formats:  []string{"text", "svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/keyforge/pkg/cache"
	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultStrategy is the layout strategy used when none is given.
const DefaultStrategy = layout.BranchAndBound

// DefaultFormat is the output format used when none is given.
const DefaultFormat = render.FormatText

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Strategy  layout.Strategy `json:"strategy,omitempty"`
	NodeLimit int             `json:"node_limit,omitempty"` // 0 means layout.DefaultNodeLimit
	Refresh   bool            `json:"refresh,omitempty"`    // skip the layout cache read

	// Render options
	Formats  []string `json:"formats,omitempty"`
	TopEdges int      `json:"top_edges,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger                           `json:"-"`
	Progress func(nodes, pruned int, best float64) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the placement and its costs.
	Layout layout.Result

	// MatrixHash is the content hash of the input matrix.
	MatrixHash string

	// Keyboard is the labelled layout.
	Keyboard *keyboard.Keyboard

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Size       int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
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
	if o.Strategy == 0 {
		o.Strategy = DefaultStrategy
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if !o.Strategy.Valid() {
		return fmt.Errorf("%w: %s", layout.ErrUnknownStrategy, o.Strategy)
	}
	if o.NodeLimit < 0 {
		return fmt.Errorf("node_limit must not be negative, got %d", o.NodeLimit)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
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

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:  o.Strategy.String(),
		NodeLimit: o.NodeLimit,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	ko := cache.ArtifactKeyOpts{
		Format:   format,
		TopEdges: o.TopEdges,
	}
	if format == render.FormatPNG {
		ko.Scale = o.RenderOptions().PNGScale()
	}
	return ko
}

// RenderOptions returns the options passed to the renderer.
func (o *Options) RenderOptions() render.Options {
	return render.Options{TopEdges: o.TopEdges, Scale: o.Scale}
}
