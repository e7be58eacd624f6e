// Package analysis reports structural diagnostics for concept graphs and
// their layouts.
//
// Generated maps are often messier than they look once drawn: relations point
// at concepts that were never emitted, clusters float free of the topic, and
// cycles are flattened by the level assignment. [Analyze] measures all of
// that alongside the layout it was drawn with:
//
//	res := layout.Compute(g, 3)
//	report := analysis.Analyze(g, res)
//	fmt.Println(report.Crossings, report.DroppedEdges)
//
// Connectivity, cycles and centrality come from gonum's graph algorithms.
// Crossings are counted between every pair of adjacent rows with a Fenwick
// tree inversion count over the drawn edges.
package analysis
