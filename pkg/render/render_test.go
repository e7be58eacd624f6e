package render

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/layout"
)

func sampleLayout() layout.Result {
	g := concept.Graph{
		Topic: "Fotosíntesis",
		Nodes: []concept.Node{
			{ID: "f", Label: "Fotosíntesis", Description: "Proceso de <plantas> & algas"},
			{ID: "l", Label: "Luz solar"},
			{ID: "c", Label: "Clorofila"},
		},
		Edges: []concept.Edge{
			{From: "f", To: "l", Relation: "requiere"},
			{From: "f", To: "c", Relation: "usa"},
			{From: "l", To: "c", Relation: "excita"},
		},
	}
	return layout.Compute(g, 3)
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleLayout()))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not a standalone SVG document:\n%s", svg)
	}
	if !strings.Contains(svg, `viewBox="0 0 1000.0 700.0"`) {
		t.Error("default frame should be 1000x700")
	}
	for _, id := range []string{"f", "l", "c"} {
		if !strings.Contains(svg, `id="concept-`+id+`"`) {
			t.Errorf("missing concept %s", id)
		}
	}
	// l->c joins concepts on the same level and is not drawn.
	if got := strings.Count(svg, `class="relation"`); got != 2 {
		t.Errorf("drew %d relations, want 2", got)
	}
	if !strings.Contains(svg, ">requiere</text>") {
		t.Error("relation label missing")
	}
	if strings.Contains(svg, "excita") {
		t.Error("filtered relation should not be drawn")
	}
	if !strings.Contains(svg, "<title>Proceso de &lt;plantas&gt; &amp; algas</title>") {
		t.Error("description should be an escaped tooltip")
	}
	if !strings.Contains(svg, `stroke-width="2.5"`) {
		t.Error("root should have a heavier outline")
	}
	if strings.Contains(svg, "<script") {
		t.Error("interaction script should be opt-in")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	res := sampleLayout()
	if !bytes.Equal(RenderSVG(res), RenderSVG(res)) {
		t.Error("RenderSVG output should be deterministic")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(), WithSize(400, 300), WithInteraction()))

	if !strings.Contains(svg, `width="400" height="300"`) {
		t.Error("WithSize not applied")
	}
	if !strings.Contains(svg, "<script") || !strings.Contains(svg, "<style>") {
		t.Error("WithInteraction should embed style and script")
	}
}

func TestRenderSVGEmptyLayout(t *testing.T) {
	svg := string(RenderSVG(layout.Compute(concept.Graph{}, 3)))
	if !strings.Contains(svg, `<g class="concepts">`) || strings.Contains(svg, `class="concept"`) {
		t.Errorf("empty layout should render an empty frame:\n%s", svg)
	}
}

func TestPixelMapping(t *testing.T) {
	if got := PixelX(0, 1000); got != marginX {
		t.Errorf("PixelX(0) = %v, want %v", got, marginX)
	}
	if got := PixelX(100, 1000); got != 1000-marginX {
		t.Errorf("PixelX(100) = %v, want %v", got, 1000-marginX)
	}
	if got := PixelX(50, 1000); got != 500 {
		t.Errorf("PixelX(50) = %v, want 500", got)
	}
	if got := PixelY(10, 700); got != 70 {
		t.Errorf("PixelY(10) = %v, want 70", got)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, "layout=neato") {
		t.Error("ToDOT() should select neato so positions are honored")
	}
	// Root sits at x=50, y=10: pixel (500, 70), flipped to 630.
	if !strings.Contains(dot, `"f" [label="Fotosíntesis", pos="500.0,630.0!"`) {
		t.Errorf("root position not pinned:\n%s", dot)
	}
	if !strings.Contains(dot, `"f" -> "l" [label="requiere"]`) {
		t.Error("ToDOT() output missing labeled edge")
	}
	if strings.Contains(dot, `"l" -> "c"`) {
		t.Error("same-level edge should not be exported")
	}
	if !strings.Contains(dot, "penwidth=2.5") {
		t.Error("root should be emphasized")
	}
}

func TestRenderGraphviz(t *testing.T) {
	svg, err := RenderGraphviz(context.Background(), ToDOT(sampleLayout(), Options{}))
	if err != nil {
		t.Fatalf("RenderGraphviz: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderGraphviz output is not SVG")
	}
	if !bytes.Contains(svg, []byte("Clorofila")) {
		t.Error("RenderGraphviz output missing node label")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if !strings.HasSuffix(out, "<g/></svg>") {
		t.Error("content should be preserved")
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	res := sampleLayout()

	for _, format := range []string{FormatJSON, FormatSVG, FormatDOT} {
		data, err := Render(ctx, res, format, Options{})
		if err != nil {
			t.Fatalf("Render(%s): %v", format, err)
		}
		if len(data) == 0 {
			t.Errorf("Render(%s) returned no data", format)
		}
	}

	if _, err := Render(ctx, res, "png", Options{}); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("Render(png) = %v, want INVALID_FORMAT", err)
	}
}

func TestLayoutJSONRoundTrip(t *testing.T) {
	res := sampleLayout()
	data, err := MarshalLayout(res)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	if !bytes.Contains(data, []byte(`"max_levels": 3`)) {
		t.Errorf("unexpected JSON:\n%s", data)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !reflect.DeepEqual(got, res) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, res)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		FormatJSON:     "json",
		FormatSVG:      "svg",
		FormatDOT:      "dot",
		FormatGraphviz: "svg",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%s) = %s, want %s", format, got, want)
		}
	}
}
