// Package layout computes deterministic tiered layouts for concept graphs.
//
// # Overview
//
// Concept graphs come from a language model. They may contain cycles,
// disconnected parts, duplicate edges and edges that point at concepts that
// were never emitted. This package turns such a graph into a readable
// hierarchy: every concept gets a level (its tier) and a horizontal anchor
// within that tier, and only edges joining adjacent tiers are kept for
// drawing.
//
// [Compute] runs the whole pipeline:
//
//  1. [BuildIndex] builds outgoing/incoming adjacency and indegree counts.
//  2. [SelectRoot] picks the node that seeds layering.
//  3. [AssignLevels] uses provided level hints or a bounded BFS.
//  4. [PositionLevels] orders each tier by barycenter and spaces it evenly.
//  5. [FilterEdges] keeps only adjacent-tier edges.
//  6. [YForLevel] and [TruncateWords] produce render coordinates and names.
//
// Coordinates are percentages: X in [0, 100] and Y in [MinY, MaxY], so a
// renderer can scale them to any frame.
//
// # Root Selection
//
// The root is the concept whose label matches the topic. Failing that, the
// source concept (no incoming edges) with the most children wins, then any
// concept with the most children. Ties go to the concept listed first; this
// depends on the model's emission order and carries no meaning.
//
// # Depth Bound
//
// Levels never exceed maxLevels-1. Breadth-first layering does not follow
// edges past the last tier, and concepts it never reaches are placed on
// level 0 next to the root.
//
// # Example
//
//	g := concept.Graph{
//	    Topic: "Cálculo",
//	    Nodes: []concept.Node{{ID: "a", Label: "Cálculo"}, {ID: "b", Label: "Derivada"}},
//	    Edges: []concept.Edge{{From: "a", To: "b", Relation: "estudia"}},
//	}
//	res := layout.Compute(g, 3)
//	// res.Concepts[1] is at level 1, x=50, y=50
//
// # Concurrency
//
// Compute is a pure function with no shared state and may be called from
// multiple goroutines. It performs no caching; see the pipeline package for
// memoization.
package layout
