package layout

import "github.com/matzehuels/conceptmap/pkg/concept"

// Edge is an edge that survived filtering and should be drawn.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

// FilterEdges keeps the edges whose endpoints are both leveled and exactly
// one level apart, in input order. Same-level edges, skip-level edges and
// edges touching unknown nodes are dropped; duplicates are kept.
//
// Direction is not considered: an edge pointing upward by one level is kept.
func FilterEdges(edges []concept.Edge, levels Levels) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		lf, okFrom := levels[e.From]
		lt, okTo := levels[e.To]
		if !okFrom || !okTo {
			continue
		}
		if d := lf - lt; d != 1 && d != -1 {
			continue
		}
		out = append(out, Edge{From: e.From, To: e.To, Relation: e.Relation})
	}
	return out
}
