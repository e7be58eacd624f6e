// Package render turns computed concept map layouts into drawable output.
//
// # Overview
//
// Layouts from [layout.Compute] carry percentage coordinates. This package
// scales them into a pixel frame (default 1000×700) and writes:
//
//   - [FormatSVG]: native SVG from [RenderSVG], no external tools needed
//   - [FormatDOT]: Graphviz source from [ToDOT], positions pinned
//   - [FormatGraphviz]: SVG drawn by the embedded Graphviz engine
//   - [FormatJSON]: the layout itself, via [MarshalLayout]
//
// [Render] dispatches on the format name:
//
//	res := layout.Compute(g, 3)
//	svg, err := render.Render(ctx, res, render.FormatSVG, render.Options{})
//
// # Native SVG
//
// Concepts are rounded boxes filled by level, the root has a heavier outline
// and descriptions become tooltips. Only the edges kept by layout (those
// joining adjacent levels) are drawn, each as an arrow labeled with its
// relation. [WithInteraction] adds hover highlighting of a concept and its
// relations.
//
// # Graphviz
//
// [ToDOT] pins every node at its computed position so Graphviz only routes
// edges and draws shapes. [RenderGraphviz] runs the WebAssembly build of
// Graphviz bundled with go-graphviz, so no system install is required.
//
// [layout.Compute]: github.com/matzehuels/conceptmap/pkg/layout.Compute
package render
