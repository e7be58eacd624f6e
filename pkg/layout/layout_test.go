package layout

import (
	"encoding/json"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

func node(id, label string) concept.Node {
	return concept.Node{ID: id, Label: label}
}

func leveled(id string, level int) concept.Node {
	return concept.Node{ID: id, Label: id, Level: concept.IntPtr(level)}
}

func edge(from, to string) concept.Edge {
	return concept.Edge{From: from, To: to, Relation: from + "->" + to}
}

func levelsOf(r Result) map[string]int {
	return r.Levels()
}

func xOf(t *testing.T, r Result, id string) float64 {
	t.Helper()
	c, ok := r.Concept(id)
	if !ok {
		t.Fatalf("concept %q missing from result", id)
	}
	return c.X
}

func TestComputeRootPriority(t *testing.T) {
	g := concept.Graph{
		Topic: "Topic",
		Nodes: []concept.Node{node("a", "X"), node("b", "Topic")},
		Edges: []concept.Edge{{From: "b", To: "a", Relation: "has"}},
	}

	r := Compute(g, 2)

	if r.Root != "b" {
		t.Errorf("Root = %q, want b", r.Root)
	}
	want := map[string]int{"b": 0, "a": 1}
	if got := levelsOf(r); !reflect.DeepEqual(map[string]int(got), want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
	wantEdges := []Edge{{From: "b", To: "a", Relation: "has"}}
	if !reflect.DeepEqual(r.Edges, wantEdges) {
		t.Errorf("edges = %v, want %v", r.Edges, wantEdges)
	}
}

func TestComputeFallbackLevelZero(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("r", "R"), node("c1", "C1"), node("c2", "C2"), node("x", "X"), node("y", "Y")},
		Edges: []concept.Edge{edge("r", "c1"), edge("c1", "c2"), edge("x", "y")},
	}

	r := Compute(g, 3)

	want := map[string]int{"r": 0, "c1": 1, "c2": 2, "x": 0, "y": 0}
	if got := levelsOf(r); !reflect.DeepEqual(map[string]int(got), want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
	for _, e := range r.Edges {
		if e.From == "x" || e.To == "y" {
			t.Errorf("same-level edge %v should be filtered", e)
		}
	}
}

func TestComputeSingleRootSpacing(t *testing.T) {
	g := concept.Graph{
		Topic: "Root",
		Nodes: []concept.Node{node("r", "Root"), node("a", "A"), node("b", "B"), node("c", "C")},
		Edges: []concept.Edge{edge("r", "a"), edge("r", "b"), edge("r", "c")},
	}

	r := Compute(g, 3)

	if got := xOf(t, r, "r"); got != 50 {
		t.Errorf("root x = %v, want 50", got)
	}
	want := map[string]float64{"a": 0, "b": 50, "c": 100}
	for id, x := range want {
		if got := xOf(t, r, id); got != x {
			t.Errorf("%s x = %v, want %v", id, got, x)
		}
	}
	if !slices.Equal(r.Rows[1], []string{"a", "b", "c"}) {
		t.Errorf("row 1 = %v, want [a b c]", r.Rows[1])
	}
}

func TestComputeBarycenterOrdering(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{leveled("p1", 0), leveled("p2", 0), leveled("c1", 1), leveled("c2", 1)},
		Edges: []concept.Edge{edge("p2", "c1"), edge("p1", "c2")},
	}

	r := Compute(g, 2)

	if !slices.Equal(r.Rows[0], []string{"p1", "p2"}) {
		t.Errorf("row 0 = %v, want [p1 p2]", r.Rows[0])
	}
	if !slices.Equal(r.Rows[1], []string{"c2", "c1"}) {
		t.Errorf("row 1 = %v, want [c2 c1]", r.Rows[1])
	}
	if got := xOf(t, r, "c2"); got != 0 {
		t.Errorf("c2 x = %v, want 0", got)
	}
	if got := xOf(t, r, "c1"); got != 100 {
		t.Errorf("c1 x = %v, want 100", got)
	}
}

func TestComputeBarycenterIgnoresNonAdjacentParents(t *testing.T) {
	// c has one parent two levels up and one directly above; only the
	// latter contributes to its barycenter.
	g := concept.Graph{
		Nodes: []concept.Node{
			leveled("top", 0), leveled("m1", 1), leveled("m2", 1), leveled("c", 2), leveled("d", 2),
		},
		Edges: []concept.Edge{
			edge("top", "m1"), edge("top", "m2"), edge("m2", "c"), edge("top", "c"), edge("m1", "d"),
		},
	}

	r := Compute(g, 3)

	if !slices.Equal(r.Rows[2], []string{"d", "c"}) {
		t.Errorf("row 2 = %v, want [d c]", r.Rows[2])
	}
}

func TestComputeBoundedTraversal(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("a", "A"), node("b", "B"), node("c", "C"), node("d", "D")},
		Edges: []concept.Edge{edge("a", "b"), edge("b", "c"), edge("c", "d")},
	}

	r := Compute(g, 3)

	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 0}
	if got := levelsOf(r); !reflect.DeepEqual(map[string]int(got), want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
	wantEdges := []Edge{
		{From: "a", To: "b", Relation: "a->b"},
		{From: "b", To: "c", Relation: "b->c"},
	}
	if !reflect.DeepEqual(r.Edges, wantEdges) {
		t.Errorf("edges = %v, want %v", r.Edges, wantEdges)
	}
}

func TestComputeMaxLevels(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("a", "A"), node("b", "B"), node("c", "C")},
		Edges: []concept.Edge{edge("a", "b"), edge("b", "c")},
	}

	tests := []struct {
		name      string
		maxLevels int
		wantMax   int
	}{
		{"one", 1, 1},
		{"zero", 0, 1},
		{"negative", -4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compute(g, tt.maxLevels)
			if r.MaxLevels != tt.wantMax {
				t.Errorf("MaxLevels = %d, want %d", r.MaxLevels, tt.wantMax)
			}
			if len(r.Rows) != tt.wantMax {
				t.Errorf("len(Rows) = %d, want %d", len(r.Rows), tt.wantMax)
			}
			for _, c := range r.Concepts {
				if c.Level != 0 {
					t.Errorf("%s level = %d, want 0", c.ID, c.Level)
				}
				if c.Y != MinY {
					t.Errorf("%s y = %v, want %v", c.ID, c.Y, MinY)
				}
			}
			if len(r.Edges) != 0 {
				t.Errorf("edges = %v, want none", r.Edges)
			}
		})
	}
}

func TestComputeProvidedLevels(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{
			leveled("deep", 7),
			leveled("neg", -2),
			node("bare", "Bare"),
			leveled("mid", 1),
		},
		Edges: []concept.Edge{edge("neg", "mid"), edge("mid", "deep"), edge("bare", "deep")},
	}

	r := Compute(g, 3)

	want := map[string]int{"deep": 2, "neg": 0, "bare": 0, "mid": 1}
	if got := levelsOf(r); !reflect.DeepEqual(map[string]int(got), want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
	if len(r.Edges) != 2 {
		t.Errorf("edges = %v, want neg->mid and mid->deep", r.Edges)
	}
}

func TestComputeHugeLevelHint(t *testing.T) {
	var g concept.Graph
	data := `{"nodes":[{"id":"a","level":0},{"id":"b","level":1e30}],"edges":[{"from":"a","to":"b","relation":"r"}]}`
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	r := Compute(g, 3)

	want := map[string]int{"a": 0, "b": 2}
	if got := levelsOf(r); !reflect.DeepEqual(map[string]int(got), want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
	if len(r.Edges) != 0 {
		t.Errorf("edges = %v, want none across two levels", r.Edges)
	}
}

func TestComputeRepeatedNodeID(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("a", "A"), node("b", "B"), node("a", "A again")},
		Edges: []concept.Edge{edge("a", "b")},
	}

	r := Compute(g, 3)

	if len(r.Concepts) != 2 {
		t.Fatalf("concepts = %+v, want a and b once each", r.Concepts)
	}
	c, _ := r.Concept("a")
	if c.Name != "A" {
		t.Errorf("a name = %q, want the first occurrence", c.Name)
	}
	wantRows := [][]string{{"a"}, {"b"}, {}}
	if !reflect.DeepEqual(r.Rows, wantRows) {
		t.Errorf("rows = %v, want %v", r.Rows, wantRows)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	r := Compute(concept.Graph{Topic: "Nada"}, 3)

	if len(r.Concepts) != 0 {
		t.Errorf("concepts = %v, want none", r.Concepts)
	}
	if r.Edges == nil || len(r.Edges) != 0 {
		t.Errorf("edges = %#v, want empty non-nil slice", r.Edges)
	}
	if r.Root != "" {
		t.Errorf("Root = %q, want empty", r.Root)
	}
	if len(r.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3", len(r.Rows))
	}
}

func TestComputeCycle(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("a", "A"), node("b", "B"), node("c", "C")},
		Edges: []concept.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
	}

	r := Compute(g, 4)

	if r.Root != "a" {
		t.Errorf("Root = %q, want a", r.Root)
	}
	want := map[string]int{"a": 0, "b": 1, "c": 2}
	if got := levelsOf(r); !reflect.DeepEqual(map[string]int(got), want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
	// c->a spans two levels and is dropped.
	if len(r.Edges) != 2 {
		t.Errorf("edges = %v, want 2", r.Edges)
	}
}

func TestComputeDanglingEdges(t *testing.T) {
	clean := concept.Graph{
		Topic: "A",
		Nodes: []concept.Node{node("a", "A"), node("b", "B")},
		Edges: []concept.Edge{edge("a", "b")},
	}
	dirty := clean
	dirty.Edges = []concept.Edge{edge("ghost", "a"), edge("a", "b"), edge("b", "nowhere")}

	if got, want := Compute(dirty, 3), Compute(clean, 3); !reflect.DeepEqual(got, want) {
		t.Errorf("dangling edges changed the layout:\n got %+v\nwant %+v", got, want)
	}
}

func TestComputeDuplicateEdges(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("a", "A"), node("b", "B")},
		Edges: []concept.Edge{edge("a", "b"), edge("a", "b")},
	}

	r := Compute(g, 2)

	if len(r.Edges) != 2 {
		t.Errorf("edges = %v, want both duplicates", r.Edges)
	}
	c, _ := r.Concept("a")
	if !slices.Equal(c.Connections, []string{"b"}) {
		t.Errorf("connections = %v, want [b]", c.Connections)
	}
}

func TestComputeConnections(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{node("a", "A"), node("b", "B"), node("c", "C"), node("d", "D")},
		Edges: []concept.Edge{edge("a", "c"), edge("a", "b"), edge("a", "ghost"), edge("b", "d")},
	}

	r := Compute(g, 2)

	a, _ := r.Concept("a")
	if !slices.Equal(a.Connections, []string{"c", "b"}) {
		t.Errorf("a connections = %v, want [c b]", a.Connections)
	}
	// b->d is not drawn (d is unreachable at depth 2) but stays browsable.
	b, _ := r.Concept("b")
	if !slices.Equal(b.Connections, []string{"d"}) {
		t.Errorf("b connections = %v, want [d]", b.Connections)
	}
	d, _ := r.Concept("d")
	if d.Connections == nil {
		t.Error("connections should be an empty slice, not nil")
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	g := concept.Graph{
		Topic: "T",
		Nodes: []concept.Node{leveled("a", 9), node("b", "B")},
		Edges: []concept.Edge{edge("a", "b"), edge("b", "x")},
	}
	before := concept.Graph{
		Topic: g.Topic,
		Nodes: slices.Clone(g.Nodes),
		Edges: slices.Clone(g.Edges),
	}

	Compute(g, 2)

	if !reflect.DeepEqual(g, before) {
		t.Errorf("input graph was modified: %+v", g)
	}
	if *g.Nodes[0].Level != 9 {
		t.Errorf("level hint was modified: %d", *g.Nodes[0].Level)
	}
}

func TestComputeNamesAndDescriptions(t *testing.T) {
	g := concept.Graph{
		Nodes: []concept.Node{{
			ID:          "d",
			Label:       "Una derivada es una razón de cambio instantánea",
			Description: "Límite del cociente incremental",
		}},
	}

	r := Compute(g, 2)
	if r.Concepts[0].Name != "Una derivada es una razón…" {
		t.Errorf("Name = %q", r.Concepts[0].Name)
	}
	if r.Concepts[0].Description != "Límite del cociente incremental" {
		t.Errorf("Description = %q", r.Concepts[0].Description)
	}

	r = Compute(g, 2, WithLabelWords(0))
	if r.Concepts[0].Name != g.Nodes[0].Label {
		t.Errorf("Name = %q, want untruncated label", r.Concepts[0].Name)
	}
}

func TestComputeIdempotent(t *testing.T) {
	g := concept.Graph{
		Topic: "hub",
		Nodes: []concept.Node{node("h", "Hub"), node("a", "A"), node("b", "B"), node("c", "C"), node("d", "D")},
		Edges: []concept.Edge{edge("h", "a"), edge("h", "b"), edge("a", "c"), edge("b", "c"), edge("c", "h"), edge("d", "a")},
	}

	first := Compute(g, 4)
	second := Compute(g, 4)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestYForLevel(t *testing.T) {
	tests := []struct {
		level, maxLevels int
		want             float64
	}{
		{0, 1, 10},
		{0, 2, 10},
		{1, 2, 90},
		{0, 3, 10},
		{1, 3, 50},
		{2, 3, 90},
		{1, 5, 30},
		{0, 0, 10},
	}
	for _, tt := range tests {
		if got := YForLevel(tt.level, tt.maxLevels); got != tt.want {
			t.Errorf("YForLevel(%d, %d) = %v, want %v", tt.level, tt.maxLevels, got, tt.want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"seven words", "Una derivada es una razón de cambio instantánea", 5, "Una derivada es una razón…"},
		{"four words", "Regla de la cadena", 5, "Regla de la cadena"},
		{"exactly five", "uno dos tres cuatro cinco", 5, "uno dos tres cuatro cinco"},
		{"collapses spacing when truncated", "a  b\tc d e f", 5, "a b c d e…"},
		{"keeps spacing when not truncated", "a  b", 5, "a  b"},
		{"empty", "", 5, ""},
		{"disabled", "a b c d e f g", 0, "a b c d e f g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateWords(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
