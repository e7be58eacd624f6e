package analysis

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/layout"
)

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// Report summarizes the structure of a concept graph and how much of it a
// layout was able to draw.
type Report struct {
	Topic string `json:"topic"`
	Root  string `json:"root,omitempty"`

	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
	DanglingEdges int `json:"dangling_edges"`
	SelfLoops     int `json:"self_loops"`
	Duplicates    int `json:"duplicate_edges"`

	// Components holds weakly connected components in input order, each
	// listing node IDs in input order.
	Components [][]string `json:"components"`
	// Cycles holds strongly connected components with more than one node.
	Cycles [][]string `json:"cycles"`

	Central     string             `json:"central,omitempty"`
	CentralRank float64            `json:"central_rank,omitempty"`
	PageRank    map[string]float64 `json:"pagerank,omitempty"`

	MaxLevels     int   `json:"max_levels"`
	LevelWidths   []int `json:"level_widths"`
	RenderedEdges int   `json:"rendered_edges"`
	DroppedEdges  int   `json:"dropped_edges"`
	Crossings     int   `json:"crossings"`
}

// Connected reports whether every concept belongs to a single component.
func (r Report) Connected() bool { return len(r.Components) <= 1 }

// Acyclic reports whether the graph has no cycles, self loops included.
func (r Report) Acyclic() bool { return len(r.Cycles) == 0 && r.SelfLoops == 0 }

// Analyze inspects g together with res, the layout computed for it.
//
// Duplicate node IDs count once (first occurrence wins, as in layout).
// Edges with an unknown endpoint are counted as dangling and otherwise
// ignored.
func Analyze(g concept.Graph, res layout.Result) Report {
	r := Report{
		Topic:         g.Topic,
		Root:          res.Root,
		Edges:         len(g.Edges),
		MaxLevels:     res.MaxLevels,
		RenderedEdges: len(res.Edges),
		Components:    [][]string{},
		Cycles:        [][]string{},
	}

	ids, index := nodeIDs(g.Nodes)
	r.Nodes = len(ids)

	directed := simple.NewDirectedGraph()
	undirected := simple.NewUndirectedGraph()
	for i := range ids {
		directed.AddNode(simple.Node(i))
		undirected.AddNode(simple.Node(i))
	}

	type pair struct{ from, to int64 }
	seen := make(map[pair]bool, len(g.Edges))
	for _, e := range g.Edges {
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		switch {
		case !okFrom || !okTo:
			r.DanglingEdges++
			continue
		case from == to:
			r.SelfLoops++
			continue
		}
		p := pair{from, to}
		if seen[p] {
			r.Duplicates++
			continue
		}
		seen[p] = true
		directed.SetEdge(directed.NewEdge(directed.Node(from), directed.Node(to)))
		if !undirected.HasEdgeBetween(from, to) {
			undirected.SetEdge(undirected.NewEdge(undirected.Node(from), undirected.Node(to)))
		}
	}
	// Every valid edge not kept by the layout was dropped.
	r.DroppedEdges = len(g.Edges) - r.DanglingEdges - r.RenderedEdges
	if r.DroppedEdges < 0 {
		r.DroppedEdges = 0
	}

	for _, comp := range topo.ConnectedComponents(undirected) {
		r.Components = append(r.Components, sortedIDs(comp, ids))
	}
	sortGroups(r.Components, index)

	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) > 1 {
			r.Cycles = append(r.Cycles, sortedIDs(scc, ids))
		}
	}
	sortGroups(r.Cycles, index)

	if len(ids) > 0 {
		ranks := network.PageRank(directed, pageRankDamping, pageRankTolerance)
		r.PageRank = make(map[string]float64, len(ranks))
		for i, id := range ids {
			rank := ranks[int64(i)]
			r.PageRank[id] = rank
			if r.Central == "" || rank > r.CentralRank {
				r.Central, r.CentralRank = id, rank
			}
		}
	}

	r.LevelWidths = make([]int, len(res.Rows))
	for i, row := range res.Rows {
		r.LevelWidths[i] = len(row)
	}
	r.Crossings = CountCrossings(res.Rows, res.Edges)
	return r
}

// nodeIDs returns unique node IDs in input order and their gonum node IDs.
func nodeIDs(nodes []concept.Node) ([]string, map[string]int64) {
	ids := make([]string, 0, len(nodes))
	index := make(map[string]int64, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = int64(len(ids))
		ids = append(ids, n.ID)
	}
	return ids, index
}

func sortedIDs(nodes []graph.Node, ids []string) []string {
	idx := make([]int64, len(nodes))
	for i, n := range nodes {
		idx[i] = n.ID()
	}
	slices.Sort(idx)
	out := make([]string, len(idx))
	for i, id := range idx {
		out[i] = ids[id]
	}
	return out
}

// sortGroups orders groups by the input position of their first member.
func sortGroups(groups [][]string, index map[string]int64) {
	slices.SortFunc(groups, func(a, b []string) int {
		return int(index[a[0]] - index[b[0]])
	})
}
