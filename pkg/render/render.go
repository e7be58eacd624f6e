package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/layout"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatSVG      = "svg"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
)

// Formats lists every supported format in a stable order.
var Formats = []string{FormatJSON, FormatSVG, FormatDOT, FormatGraphviz}

// Default frame size in pixels. Layout coordinates are percentages and are
// scaled into this frame.
const (
	DefaultWidth  = 1000.0
	DefaultHeight = 700.0
)

// Options configures every renderer.
type Options struct {
	Width  float64
	Height float64

	// Interactive adds hover highlighting to native SVG output.
	Interactive bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatGraphviz:
		return "svg"
	default:
		return format
	}
}

// Render produces res in the given format.
func Render(ctx context.Context, res layout.Result, format string, opts Options) ([]byte, error) {
	if err := apperr.ValidateFormat(format, Formats...); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	switch format {
	case FormatJSON:
		return MarshalLayout(res)
	case FormatSVG:
		svgOpts := []SVGOption{WithSize(opts.Width, opts.Height)}
		if opts.Interactive {
			svgOpts = append(svgOpts, WithInteraction())
		}
		return RenderSVG(res, svgOpts...), nil
	case FormatDOT:
		return []byte(ToDOT(res, opts)), nil
	case FormatGraphviz:
		return RenderGraphviz(ctx, ToDOT(res, opts))
	}
	return nil, fmt.Errorf("unreachable format %q", format)
}

// MarshalLayout encodes a layout as indented JSON.
func MarshalLayout(res layout.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes a layout produced by [MarshalLayout].
func UnmarshalLayout(data []byte) (layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return layout.Result{}, fmt.Errorf("decode layout: %w", err)
	}
	return res, nil
}
