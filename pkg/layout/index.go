package layout

import "github.com/matzehuels/conceptmap/pkg/concept"

// idSet is an insertion-ordered set of node IDs.
type idSet struct {
	ids  []string
	seen map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Index is the adjacency view of a concept graph.
//
// Only edges whose endpoints both exist contribute to the index. Duplicate
// edges count once toward the neighbor sets but every copy increments the
// target's indegree. Index is read-only after [BuildIndex] returns and is
// safe for concurrent reads.
type Index struct {
	order    []string // node IDs in input order, first occurrence only
	outgoing map[string]*idSet
	incoming map[string]*idSet
	indegree map[string]int
}

// BuildIndex builds outgoing and incoming adjacency plus indegree counts.
// Edges that reference unknown node IDs are ignored.
func BuildIndex(nodes []concept.Node, edges []concept.Edge) *Index {
	ix := &Index{
		order:    make([]string, 0, len(nodes)),
		outgoing: make(map[string]*idSet, len(nodes)),
		incoming: make(map[string]*idSet, len(nodes)),
		indegree: make(map[string]int, len(nodes)),
	}

	for _, n := range nodes {
		if _, exists := ix.outgoing[n.ID]; exists {
			continue
		}
		ix.order = append(ix.order, n.ID)
		ix.outgoing[n.ID] = newIDSet()
		ix.incoming[n.ID] = newIDSet()
		ix.indegree[n.ID] = 0
	}

	for _, e := range edges {
		out, okFrom := ix.outgoing[e.From]
		in, okTo := ix.incoming[e.To]
		if !okFrom || !okTo {
			continue
		}
		out.add(e.To)
		in.add(e.From)
		ix.indegree[e.To]++
	}

	return ix
}

// Has reports whether id is a known node.
func (ix *Index) Has(id string) bool {
	_, ok := ix.outgoing[id]
	return ok
}

// IDs returns the distinct node IDs in input order.
// The returned slice should not be modified.
func (ix *Index) IDs() []string { return ix.order }

// Len returns the number of distinct nodes.
func (ix *Index) Len() int { return len(ix.order) }

// Children returns the outgoing neighbors of id in first-seen edge order.
// Returns nil for unknown IDs. The returned slice should not be modified.
func (ix *Index) Children(id string) []string {
	if s, ok := ix.outgoing[id]; ok {
		return s.ids
	}
	return nil
}

// Parents returns the incoming neighbors of id in first-seen edge order.
// Returns nil for unknown IDs. The returned slice should not be modified.
func (ix *Index) Parents(id string) []string {
	if s, ok := ix.incoming[id]; ok {
		return s.ids
	}
	return nil
}

// OutDegree returns the size of id's outgoing neighbor set.
func (ix *Index) OutDegree(id string) int { return len(ix.Children(id)) }

// InDegree returns the number of valid edges ending at id, duplicates included.
func (ix *Index) InDegree(id string) int { return ix.indegree[id] }
