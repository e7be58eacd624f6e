package concept

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNodeUnmarshalLevel(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *int
	}{
		{"integer", `{"id":"a","level":2}`, IntPtr(2)},
		{"float floors", `{"id":"a","level":2.7}`, IntPtr(2)},
		{"negative float floors", `{"id":"a","level":-0.5}`, IntPtr(-1)},
		{"absent", `{"id":"a"}`, nil},
		{"null", `{"id":"a","level":null}`, nil},
		{"string ignored", `{"id":"a","level":"2"}`, nil},
		{"bool ignored", `{"id":"a","level":true}`, nil},
		{"huge level saturates", `{"id":"a","level":1e30}`, IntPtr(math.MaxInt32)},
		{"huge negative level saturates", `{"id":"a","level":-1e30}`, IntPtr(math.MinInt32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Node
			if err := n.UnmarshalJSON([]byte(tt.json)); err != nil {
				t.Fatalf("UnmarshalJSON: %v", err)
			}
			if n.ID != "a" {
				t.Errorf("ID = %q, want a", n.ID)
			}
			if !reflect.DeepEqual(n.Level, tt.want) {
				t.Errorf("Level = %v, want %v", deref(n.Level), deref(tt.want))
			}
		})
	}
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestUnmarshalGraphNormalizes(t *testing.T) {
	data := `{"topic":"T","nodes":[
		{"id":" a ","label":"A"},
		{"id":"b","label":"B"},
		{"id":"","label":"sin id"},
		{"id":"a","label":"A again"},
		{"id":"  ","label":"blank"}
	],"edges":[{"from":" a","to":"b ","relation":"r"}]}`

	g, err := UnmarshalGraph([]byte(data))
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}

	want := []Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}
	if !reflect.DeepEqual(g.Nodes, want) {
		t.Errorf("nodes = %+v, want %+v", g.Nodes, want)
	}
	if e := g.Edges[0]; e.From != "a" || e.To != "b" {
		t.Errorf("edge endpoints not trimmed: %+v", e)
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: " a "}, {ID: "a"}},
		Edges: []Edge{{From: " a", To: "a "}},
	}
	got := Normalize(g)

	if len(got.Nodes) != 1 || got.Nodes[0].ID != "a" {
		t.Errorf("Normalize nodes = %+v", got.Nodes)
	}
	if g.Nodes[0].ID != " a " || g.Edges[0].From != " a" {
		t.Errorf("input was modified: %+v", g)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := Graph{
		Topic: "Fotosíntesis & luz",
		Nodes: []Node{
			{ID: "a", Label: "Fotosíntesis", Description: "Proceso <vegetal>"},
			{ID: "b", Label: "Clorofila", Level: IntPtr(1)},
		},
		Edges: []Edge{{From: "a", To: "b", Relation: "requiere"}},
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !strings.Contains(string(data), "<vegetal>") || !strings.Contains(string(data), "&") {
		t.Errorf("HTML characters should not be escaped:\n%s", data)
	}

	got, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, g)
	}
}

func TestMarshalGraphEmptySlices(t *testing.T) {
	data, err := MarshalGraph(Graph{Topic: "x"})
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"nodes": []`) || !strings.Contains(s, `"edges": []`) {
		t.Errorf("nil slices should encode as []:\n%s", s)
	}
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantDepth int
		wantNodes int
		wantErr   error
	}{
		{
			name:      "wrapper",
			data:      `{"map":{"topic":"T","nodes":[{"id":"a","label":"A"}],"edges":[]},"depth":4}`,
			wantDepth: 4, wantNodes: 1,
		},
		{
			name:      "bare graph",
			data:      `{"topic":"T","nodes":[{"id":"a","label":"A"},{"id":"b","label":"B"}],"edges":[{"from":"a","to":"b","relation":"r"}]}`,
			wantDepth: 0, wantNodes: 2,
		},
		{
			name:      "negative depth",
			data:      `{"map":{"nodes":[{"id":"a"}]},"depth":-3}`,
			wantDepth: 0, wantNodes: 1,
		},
		{
			name:    "no nodes",
			data:    `{"map":{"topic":"T"},"depth":2}`,
			wantErr: ErrEmptyGraph, wantDepth: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if doc.Depth != tt.wantDepth {
				t.Errorf("Depth = %d, want %d", doc.Depth, tt.wantDepth)
			}
			if len(doc.Map.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(doc.Map.Nodes), tt.wantNodes)
			}
			if doc.Map.Edges == nil {
				t.Error("edges should be normalized to an empty slice")
			}
		})
	}
}

func TestDecodeDocumentInvalid(t *testing.T) {
	for _, data := range []string{``, `[1,2]`, `{"map":"nope"}`, `not json`} {
		if _, err := DecodeDocument([]byte(data)); err == nil || errors.Is(err, ErrEmptyGraph) {
			t.Errorf("DecodeDocument(%q) err = %v, want decode error", data, err)
		}
	}
}

func TestMarshalDocumentRoundTrip(t *testing.T) {
	doc := Document{
		Map:   Graph{Topic: "T", Nodes: []Node{{ID: "a", Label: "A"}}, Edges: []Edge{}},
		Depth: 3,
	}
	data, err := MarshalDocument(doc)
	if err != nil {
		t.Fatalf("MarshalDocument: %v", err)
	}
	got, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestReadDocumentFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.yaml")
	content := `map:
  topic: Célula
  nodes:
    - id: c
      label: Célula
    - id: n
      label: Núcleo
      level: 1
  edges:
    - from: c
      to: n
      relation: contiene
depth: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile: %v", err)
	}
	if doc.Depth != 3 || doc.Map.Topic != "Célula" || len(doc.Map.Nodes) != 2 {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Map.Nodes[1].Level == nil || *doc.Map.Nodes[1].Level != 1 {
		t.Errorf("level hint lost: %+v", doc.Map.Nodes[1])
	}
}

func TestReadGraphFileBareYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yml")
	content := "topic: T\nnodes:\n  - id: a\n    label: A\nedges: []\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.Topic != "T" || len(g.Nodes) != 1 {
		t.Errorf("unexpected graph: %+v", g)
	}
}

func TestWriteAndReadGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	g := Graph{Topic: "T", Nodes: []Node{{ID: "a", Label: "A"}}, Edges: []Edge{}}

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Errorf("got %+v, want %+v", got, g)
	}
}

func TestReadGraphFileEmptyGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"topic":"T"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile should accept empty graphs: %v", err)
	}
	if g.Topic != "T" || len(g.Nodes) != 0 {
		t.Errorf("unexpected graph: %+v", g)
	}
}

func TestNameAndDisplayLabel(t *testing.T) {
	if got := Name("  Cálculo "); got != "Mapa: Cálculo" {
		t.Errorf("Name = %q", got)
	}
	if got := (Node{ID: "x", Label: " "}).DisplayLabel(); got != "x" {
		t.Errorf("DisplayLabel = %q, want id fallback", got)
	}
	if got := (Node{ID: "x", Label: "Ex"}).DisplayLabel(); got != "Ex" {
		t.Errorf("DisplayLabel = %q", got)
	}
}
