package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/conceptmap/pkg/layout"
)

// pointsPerInch converts pixel coordinates to Graphviz points.
const pointsPerInch = 72.0

// ToDOT converts a layout to Graphviz DOT.
//
// Node positions are pinned (pos="x,y!") so Graphviz draws the computed
// layout instead of its own; the graph uses the neato engine, which honors
// pinned positions. Graphviz places the origin at the bottom left, so the
// vertical axis is flipped. Edges carry their relation as label.
func ToDOT(res layout.Result, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if res.Topic != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", res.Topic)
		buf.WriteString("  labelloc=t;\n")
	}
	fmt.Fprintf(&buf, "  size=\"%.2f,%.2f\";\n", opts.Width/pointsPerInch, opts.Height/pointsPerInch)
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#64748b\", fontcolor=\"#475569\"];\n")
	buf.WriteString("\n")

	seen := make(map[string]bool, len(res.Concepts))
	for _, c := range res.Concepts {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		x := PixelX(c.X, opts.Width)
		y := opts.Height - PixelY(c.Y, opts.Height)
		attrs := fmt.Sprintf("label=%q, pos=\"%.1f,%.1f!\", pin=true, fillcolor=%q", c.Name, x, y, levelFills[c.Level%len(levelFills)])
		if c.Description != "" {
			attrs += fmt.Sprintf(", tooltip=%q", c.Description)
		}
		if c.ID == res.Root {
			attrs += ", penwidth=2.5"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		if e.Relation != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Relation)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
