package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// ComputeLayout lays out g at maxLevels with the label options from opts.
// It does no caching.
func ComputeLayout(g concept.Graph, maxLevels int, opts Options) layout.Result {
	return layout.Compute(g, maxLevels, layout.WithLabelWords(opts.ResolveLabelWords()))
}

// RenderFromLayout renders res in every format of opts. It does no caching.
// Call ValidateForRender first.
func RenderFromLayout(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	ropts := opts.RenderOptions()
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		data, err := render.Render(ctx, res, format, ropts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
