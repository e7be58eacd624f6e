package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/conceptmap/pkg/layout"
)

// Node box geometry in pixels.
const (
	marginX       = 100.0
	nodeHeight    = 34.0
	nodeMinWidth  = 70.0
	charWidth     = 7.2
	nodePaddingX  = 24.0
	fontSize      = 13
	labelFontSize = 11
)

var levelFills = []string{"#dbeafe", "#dcfce7", "#fef9c3", "#fce7f3", "#ede9fe", "#ffedd5"}

const conceptInteractionCSS = `
    .concept rect { transition: stroke-width 0.2s ease; }
    .concept.highlight rect { stroke-width: 3; }
    .relation { transition: opacity 0.2s ease; }
    svg.focus .relation:not(.highlight), svg.focus .concept:not(.highlight) { opacity: 0.25; }`

const conceptInteractionJS = `
    (function() {
      var svg = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg');
      function focus(id) {
        svg.classList.add('focus');
        svg.querySelectorAll('.relation').forEach(function(e) {
          var on = e.dataset.from === id || e.dataset.to === id;
          e.classList.toggle('highlight', on);
          if (on) {
            svg.getElementById('concept-' + e.dataset.from).classList.add('highlight');
            svg.getElementById('concept-' + e.dataset.to).classList.add('highlight');
          }
        });
        svg.getElementById('concept-' + id).classList.add('highlight');
      }
      function clear() {
        svg.classList.remove('focus');
        svg.querySelectorAll('.highlight').forEach(function(el) { el.classList.remove('highlight'); });
      }
      svg.querySelectorAll('.concept').forEach(function(el) {
        el.addEventListener('mouseenter', function() { focus(el.dataset.id); });
        el.addEventListener('mouseleave', clear);
      });
    })();`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	interactive   bool
}

// WithSize sets the frame size in pixels.
func WithSize(width, height float64) SVGOption {
	return func(r *svgRenderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithInteraction embeds CSS and a script that highlight a concept's
// relations on hover.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws a layout as a standalone SVG document.
//
// Concepts become rounded boxes labeled with their (truncated) name and
// colored by level; the root gets a heavier outline and descriptions become
// hover tooltips. Each drawn edge is an arrow labeled with its relation.
// Output depends only on the layout and options.
func RenderSVG(res layout.Result, opts ...SVGOption) []byte {
	r := svgRenderer{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(&r)
	}

	boxes := make(map[string]box, len(res.Concepts))
	for _, c := range res.Concepts {
		if _, dup := boxes[c.ID]; !dup {
			boxes[c.ID] = r.box(c)
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="Helvetica, Arial, sans-serif">`+"\n",
		r.width, r.height, r.width, r.height)
	if res.Topic != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(res.Topic))
	}
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">` + "\n")
	buf.WriteString(`      <path d="M 0 0 L 10 5 L 0 10 z" fill="#64748b"/>` + "\n")
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")

	buf.WriteString(`  <g class="relations">` + "\n")
	for _, e := range res.Edges {
		from, okFrom := boxes[e.From]
		to, okTo := boxes[e.To]
		if !okFrom || !okTo {
			continue
		}
		renderEdge(&buf, e, from, to)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="concepts">` + "\n")
	seen := make(map[string]bool, len(res.Concepts))
	for _, c := range res.Concepts {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		renderConcept(&buf, c, boxes[c.ID], c.ID == res.Root)
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", conceptInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", conceptInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// box is a concept's rectangle, centered on (cx, cy).
type box struct {
	cx, cy, w, h float64
}

func (r svgRenderer) box(c layout.Concept) box {
	return box{
		cx: PixelX(c.X, r.width),
		cy: PixelY(c.Y, r.height),
		w:  nodeWidth(c.Name),
		h:  nodeHeight,
	}
}

// PixelX maps a horizontal anchor (0-100) into a frame of the given width,
// leaving room for boxes at both edges.
func PixelX(x, width float64) float64 {
	inner := width - 2*marginX
	if inner < 0 {
		inner = 0
	}
	return marginX + x/100*inner
}

// PixelY maps a vertical percentage into a frame of the given height.
func PixelY(y, height float64) float64 {
	return y / 100 * height
}

func nodeWidth(name string) float64 {
	w := float64(utf8.RuneCountInString(name))*charWidth + nodePaddingX
	if w < nodeMinWidth {
		return nodeMinWidth
	}
	return w
}

func renderEdge(buf *bytes.Buffer, e layout.Edge, from, to box) {
	x1, y1, x2, y2 := from.cx, from.cy, to.cx, to.cy
	switch {
	case to.cy > from.cy:
		y1 += from.h / 2
		y2 -= to.h / 2
	case to.cy < from.cy:
		y1 -= from.h / 2
		y2 += to.h / 2
	}

	fmt.Fprintf(buf, `    <g class="relation" data-from="%s" data-to="%s">`+"\n", escape(e.From), escape(e.To))
	fmt.Fprintf(buf, `      <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#64748b" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
		x1, y1, x2, y2)
	if e.Relation != "" {
		mx, my := (x1+x2)/2, (y1+y2)/2
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%d" fill="#475569" text-anchor="middle" paint-order="stroke" stroke="#ffffff" stroke-width="3">%s</text>`+"\n",
			mx, my, labelFontSize, escape(e.Relation))
	}
	buf.WriteString("    </g>\n")
}

func renderConcept(buf *bytes.Buffer, c layout.Concept, b box, root bool) {
	fill := levelFills[c.Level%len(levelFills)]
	stroke, strokeWidth := "#334155", 1.2
	if root {
		stroke, strokeWidth = "#0f172a", 2.5
	}

	fmt.Fprintf(buf, `    <g class="concept" id="concept-%s" data-id="%s" data-level="%d">`+"\n", escape(c.ID), escape(c.ID), c.Level)
	if c.Description != "" {
		fmt.Fprintf(buf, "      <title>%s</title>\n", escape(c.Description))
	}
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" ry="8" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		b.cx-b.w/2, b.cy-b.h/2, b.w, b.h, fill, stroke, strokeWidth)
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%d" fill="#0f172a" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		b.cx, b.cy, fontSize, escape(c.Name))
	buf.WriteString("    </g>\n")
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
