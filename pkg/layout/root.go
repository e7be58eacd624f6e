package layout

import (
	"strings"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

// SelectRoot picks the node that seeds breadth-first layering.
//
// Candidates are tried in order:
//  1. a node whose trimmed label equals the trimmed topic, ignoring case
//  2. the indegree-0 node with the most children
//  3. the node with the most children
//
// Ties are broken by input order. The second result is false only when the
// graph has no nodes.
func SelectRoot(g concept.Graph, ix *Index) (string, bool) {
	if topic := normalizeLabel(g.Topic); topic != "" {
		for _, n := range g.Nodes {
			if ix.Has(n.ID) && normalizeLabel(n.Label) == topic {
				return n.ID, true
			}
		}
	}

	if id, ok := maxOutDegree(ix, func(id string) bool { return ix.InDegree(id) == 0 }); ok {
		return id, true
	}
	return maxOutDegree(ix, func(string) bool { return true })
}

// maxOutDegree returns the first node (in input order) accepted by keep that
// has the largest outgoing set.
func maxOutDegree(ix *Index, keep func(string) bool) (string, bool) {
	best, bestDeg, found := "", -1, false
	for _, id := range ix.IDs() {
		if !keep(id) {
			continue
		}
		if d := ix.OutDegree(id); d > bestDeg {
			best, bestDeg, found = id, d, true
		}
	}
	return best, found
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
