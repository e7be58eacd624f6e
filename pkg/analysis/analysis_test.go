package analysis

import (
	"reflect"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/layout"
)

func messyGraph() concept.Graph {
	return concept.Graph{
		Topic: "A",
		Nodes: []concept.Node{
			{ID: "a", Label: "A"},
			{ID: "b", Label: "B"},
			{ID: "c", Label: "C"},
			{ID: "d", Label: "D"},
			{ID: "e", Label: "E"},
		},
		Edges: []concept.Edge{
			{From: "a", To: "b"},
			{From: "a", To: "c"},
			{From: "b", To: "c"},
			{From: "c", To: "a"},
			{From: "a", To: "a"},
			{From: "a", To: "b"},
			{From: "a", To: "zz"},
			{From: "d", To: "e"},
		},
	}
}

func TestAnalyze(t *testing.T) {
	g := messyGraph()
	r := Analyze(g, layout.Compute(g, 3))

	if r.Root != "a" || r.Nodes != 5 || r.Edges != 8 {
		t.Errorf("root/nodes/edges = %s/%d/%d, want a/5/8", r.Root, r.Nodes, r.Edges)
	}
	if r.DanglingEdges != 1 || r.SelfLoops != 1 || r.Duplicates != 1 {
		t.Errorf("dangling/self/dup = %d/%d/%d, want 1/1/1", r.DanglingEdges, r.SelfLoops, r.Duplicates)
	}
	if r.RenderedEdges != 4 || r.DroppedEdges != 3 {
		t.Errorf("rendered/dropped = %d/%d, want 4/3", r.RenderedEdges, r.DroppedEdges)
	}
	if want := [][]string{{"a", "b", "c"}, {"d", "e"}}; !reflect.DeepEqual(r.Components, want) {
		t.Errorf("Components = %v, want %v", r.Components, want)
	}
	if want := [][]string{{"a", "b", "c"}}; !reflect.DeepEqual(r.Cycles, want) {
		t.Errorf("Cycles = %v, want %v", r.Cycles, want)
	}
	if r.Connected() || r.Acyclic() {
		t.Error("graph should be disconnected and cyclic")
	}
	if want := []int{3, 2, 0}; !reflect.DeepEqual(r.LevelWidths, want) {
		t.Errorf("LevelWidths = %v, want %v", r.LevelWidths, want)
	}
	if r.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", r.Crossings)
	}
	if len(r.PageRank) != 5 || r.Central == "" {
		t.Errorf("PageRank = %v, central %q", r.PageRank, r.Central)
	}
	if r.PageRank[r.Central] != r.CentralRank {
		t.Error("CentralRank should match the central concept's rank")
	}
}

func TestAnalyzeTree(t *testing.T) {
	g := concept.Graph{
		Topic: "Raíz",
		Nodes: []concept.Node{
			{ID: "r", Label: "Raíz"},
			{ID: "x", Label: "X"},
			{ID: "y", Label: "Y"},
		},
		Edges: []concept.Edge{
			{From: "r", To: "x", Relation: "tiene"},
			{From: "r", To: "y", Relation: "tiene"},
		},
	}
	r := Analyze(g, layout.Compute(g, 2))

	if !r.Connected() || !r.Acyclic() {
		t.Error("a tree should be connected and acyclic")
	}
	if r.DroppedEdges != 0 || r.RenderedEdges != 2 {
		t.Errorf("rendered/dropped = %d/%d, want 2/0", r.RenderedEdges, r.DroppedEdges)
	}
	// Rank flows from the root to its children.
	if r.Central == "r" {
		t.Errorf("Central = %q, expected a leaf", r.Central)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze(concept.Graph{}, layout.Compute(concept.Graph{}, 3))
	if r.Nodes != 0 || r.Central != "" || r.PageRank != nil {
		t.Errorf("empty graph report = %+v", r)
	}
	if len(r.Components) != 0 || len(r.Cycles) != 0 {
		t.Error("empty graph should have no components or cycles")
	}
	if !r.Connected() || !r.Acyclic() {
		t.Error("empty graph is trivially connected and acyclic")
	}
}

func TestAnalyzeDuplicateNodes(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{{ID: "a"}, {ID: "a"}, {ID: "b"}},
		Edges: []concept.Edge{{From: "a", To: "b"}},
	}
	r := Analyze(g, layout.Compute(g, 3))
	if r.Nodes != 2 {
		t.Errorf("Nodes = %d, want 2", r.Nodes)
	}
}

func TestCountCrossings(t *testing.T) {
	e := func(from, to string) layout.Edge { return layout.Edge{From: from, To: to} }

	tests := []struct {
		name  string
		rows  [][]string
		edges []layout.Edge
		want  int
	}{
		{"empty", nil, nil, 0},
		{"parallel", [][]string{{"a", "b"}, {"c", "d"}}, []layout.Edge{e("a", "c"), e("b", "d")}, 0},
		{"single cross", [][]string{{"a", "b"}, {"c", "d"}}, []layout.Edge{e("a", "d"), e("b", "c")}, 1},
		{"complete bipartite", [][]string{{"a", "b"}, {"c", "d"}},
			[]layout.Edge{e("a", "c"), e("a", "d"), e("b", "c"), e("b", "d")}, 1},
		{"upward edges", [][]string{{"a", "b"}, {"c", "d"}}, []layout.Edge{e("d", "a"), e("c", "b")}, 1},
		{"shared endpoint", [][]string{{"a", "b"}, {"c"}}, []layout.Edge{e("a", "c"), e("b", "c")}, 0},
		{"non adjacent ignored", [][]string{{"a", "b"}, {}, {"c", "d"}}, []layout.Edge{e("a", "d"), e("b", "c")}, 0},
		{"unknown ignored", [][]string{{"a"}, {"c"}}, []layout.Edge{e("a", "zz"), e("a", "c")}, 0},
		{"three rows", [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
			[]layout.Edge{e("a", "d"), e("b", "c"), e("c", "f"), e("d", "e")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountCrossings(tt.rows, tt.edges); got != tt.want {
				t.Errorf("CountCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}
