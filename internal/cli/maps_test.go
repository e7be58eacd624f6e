package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/store"
)

func listMaps(t *testing.T, c *CLI) []store.Summary {
	t.Helper()
	out, err := runCommand(t, c, "maps", "list", "--json")
	if err != nil {
		t.Fatalf("maps list: %v", err)
	}
	var summaries []store.Summary
	if err := json.Unmarshal([]byte(out), &summaries); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	return summaries
}

func TestMapsLifecycle(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "foto.json", sampleGraph)

	if got := listMaps(t, c); len(got) != 0 {
		t.Fatalf("fresh store lists %d maps", len(got))
	}

	if _, err := runCommand(t, c, "maps", "import", "--class", "Biologia", in); err != nil {
		t.Fatalf("maps import: %v", err)
	}
	summaries := listMaps(t, c)
	if len(summaries) != 1 {
		t.Fatalf("listed %d maps, want 1", len(summaries))
	}
	s := summaries[0]
	if !strings.HasPrefix(s.ID, "Biologia-") || s.Name != "Mapa: Fotosíntesis" || s.Class != "Biologia" {
		t.Errorf("summary = %+v", s)
	}
	if s.Concepts != 4 || s.Levels != 3 {
		t.Errorf("summary counts = %d concepts, %d levels", s.Concepts, s.Levels)
	}

	out, err := runCommand(t, c, "maps", "show", s.ID)
	if err != nil {
		t.Fatalf("maps show: %v", err)
	}
	var rec store.Record
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode record: %v\n%s", err, out)
	}
	if rec.ID != s.ID || rec.Map.Topic != "Fotosíntesis" || len(rec.Map.Edges) != 4 {
		t.Errorf("record = %s %q with %d edges", rec.ID, rec.Map.Topic, len(rec.Map.Edges))
	}

	outDir := t.TempDir()
	if _, err := runCommand(t, c, "--no-cache", "maps", "render", "--dir", outDir, "-f", "svg,dot", s.ID); err != nil {
		t.Fatalf("maps render: %v", err)
	}
	for _, ext := range []string{".svg", ".dot"} {
		if _, err := os.Stat(filepath.Join(outDir, s.ID+ext)); err != nil {
			t.Errorf("missing %s output", ext)
		}
	}

	if _, err := runCommand(t, c, "maps", "delete", s.ID); err != nil {
		t.Fatalf("maps delete: %v", err)
	}
	if got := listMaps(t, c); len(got) != 0 {
		t.Errorf("listed %d maps after delete", len(got))
	}
	if _, err := runCommand(t, c, "maps", "show", s.ID); !apperr.Is(err, apperr.ErrCodeMapNotFound) {
		t.Errorf("show deleted map: err = %v, want MAP_NOT_FOUND", err)
	}
}

func TestMapsImportDefaultClass(t *testing.T) {
	c := newTestCLI(t)
	in := writeFile(t, t.TempDir(), "foto.json", sampleGraph)

	if _, err := runCommand(t, c, "maps", "import", in); err != nil {
		t.Fatal(err)
	}
	summaries := listMaps(t, c)
	if len(summaries) != 1 || summaries[0].Class != "Mapa Conceptual" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestMapsErrors(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.json", `{"topic": "nada", "nodes": [], "edges": []}`)

	tests := []struct {
		name string
		args []string
		code apperr.Code
	}{
		{"import empty graph", []string{"maps", "import", empty}, apperr.ErrCodeInvalidGraph},
		{"import missing file", []string{"maps", "import", filepath.Join(dir, "none.json")}, apperr.ErrCodeNotFound},
		{"show unknown", []string{"maps", "show", "Biologia-1"}, apperr.ErrCodeMapNotFound},
		{"show bad id", []string{"maps", "show", "../etc"}, apperr.ErrCodeInvalidMapID},
		{"delete unknown", []string{"maps", "delete", "Biologia-1"}, apperr.ErrCodeMapNotFound},
		{"delete bad id", []string{"maps", "delete", "a/b"}, apperr.ErrCodeInvalidMapID},
		{"render unknown", []string{"maps", "render", "Biologia-1"}, apperr.ErrCodeMapNotFound},
		{"render bad format", []string{"maps", "render", "-f", "png", "Biologia-1"}, apperr.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, c, tt.args...)
			if !apperr.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatSummaries(t *testing.T) {
	out := formatSummaries([]store.Summary{
		{ID: "Biologia-1", Name: "Mapa: Fotosíntesis", Class: "Biologia", Concepts: 4, Levels: 3, Connections: 3},
	})
	for _, want := range []string{"ID", "Connections", "Biologia-1", "Mapa: Fotosíntesis"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestMapIDCompletion(t *testing.T) {
	c := newTestCLI(t)
	in := writeFile(t, t.TempDir(), "foto.json", sampleGraph)
	if _, err := runCommand(t, c, "maps", "import", "--class", "Biologia", in); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, c, "__complete", "maps", "show", "")
	if err != nil {
		t.Fatalf("__complete: %v", err)
	}
	if !strings.Contains(out, "Biologia-") || !strings.Contains(out, "Mapa: Fotosíntesis") {
		t.Errorf("completion output = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	c := newTestCLI(t)
	for _, shell := range completionShells {
		out, err := runCommand(t, c, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("%s script does not mention %s", shell, appName)
		}
	}
	if _, err := runCommand(t, c, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
