// Package pipeline runs the load → layout → render pipeline for concept maps.
//
// The CLI, the HTTP server and the generator all go through this package so
// that defaults, caching and logging behave the same everywhere.
//
// # Stages
//
//  1. Load: read a document (or bare graph) from a JSON or YAML file
//  2. Layout: compute levels and positions with [layout.Compute]
//  3. Render: produce artifacts in the requested formats
//
// Layout and render results are memoized in a [cache.Cache]. Layout keys
// hash the canonical graph JSON together with the layout options; artifact
// keys hash the layout JSON together with the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "fotosintesis.json",
//	    Formats: []string{"svg", "dot"},
//	})
//	svg := result.Artifacts["svg"]
//
// Documents already in memory skip the load stage:
//
//	result, err := runner.ExecuteDocument(ctx, doc, opts)
//
// [layout.Compute]: github.com/matzehuels/conceptmap/pkg/layout.Compute
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxLevels is used when neither the options nor the document
	// specify a depth.
	DefaultMaxLevels = layout.DefaultMaxLevels

	// DefaultLabelWords is the number of words kept in concept names.
	DefaultLabelWords = layout.DefaultLabelWords

	DefaultWidth  = render.DefaultWidth
	DefaultHeight = render.DefaultHeight
)

// DefaultFormat is rendered when no formats are requested.
const DefaultFormat = render.FormatSVG

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Load options
	Path string `json:"path,omitempty"`

	// Layout options. MaxLevels zero defers to the document depth, then to
	// DefaultMaxLevels. LabelWords zero means DefaultLabelWords; a negative
	// value disables truncation.
	MaxLevels  int  `json:"max_levels,omitempty"`
	LabelWords int  `json:"label_words,omitempty"`
	Refresh    bool `json:"refresh,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Document concept.Document

	// GraphHash is the content hash of the canonical graph JSON.
	GraphHash string

	Layout    layout.Result
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all artifacts came from the cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := apperr.ValidateFormat(f, render.Formats...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForLoad checks that an input path is set.
func (o *Options) ValidateForLoad() error {
	o.setLoggerDefault()
	if o.Path == "" {
		return apperr.New(apperr.ErrCodeInvalidPath, "input path is required")
	}
	return nil
}

// ValidateForLayout checks layout options. An explicit MaxLevels must be
// within the accepted depth range.
func (o *Options) ValidateForLayout() error {
	o.setLoggerDefault()
	if o.MaxLevels != 0 {
		return apperr.ValidateDepth(o.MaxLevels)
	}
	return nil
}

// ValidateForRender checks formats and applies render defaults.
func (o *Options) ValidateForRender() error {
	o.setLoggerDefault()
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ResolveMaxLevels picks the depth for doc: the explicit option, else the
// depth stored with the document, else DefaultMaxLevels.
func (o *Options) ResolveMaxLevels(doc concept.Document) int {
	switch {
	case o.MaxLevels > 0:
		return o.MaxLevels
	case doc.Depth > 0:
		return doc.Depth
	default:
		return DefaultMaxLevels
	}
}

// ResolveLabelWords returns the effective truncation limit, zero meaning
// no truncation.
func (o *Options) ResolveLabelWords() int {
	switch {
	case o.LabelWords == 0:
		return DefaultLabelWords
	case o.LabelWords < 0:
		return 0
	default:
		return o.LabelWords
	}
}

// LayoutKeyOpts returns cache key options for a layout at maxLevels.
func (o *Options) LayoutKeyOpts(maxLevels int) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		MaxLevels:  maxLevels,
		LabelWords: o.ResolveLabelWords(),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		Interactive: o.Interactive && format == render.FormatSVG,
	}
}

// RenderOptions converts the pipeline options for package render.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Width: o.Width, Height: o.Height, Interactive: o.Interactive}
}
