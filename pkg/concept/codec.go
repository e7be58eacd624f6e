package concept

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyGraph is returned by [DecodeDocument] when the payload decodes but
// contains no nodes. Layout itself accepts empty graphs; this error exists
// for loaders that need to tell "nothing stored" apart from a real map.
var ErrEmptyGraph = errors.New("concept graph has no nodes")

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as indented JSON to w.
func WriteGraph(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Normalize(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph to a JSON file.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// UnmarshalGraph decodes JSON bytes into a graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return Normalize(g), nil
}

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader) (Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Graph{}, fmt.Errorf("read: %w", err)
	}
	return UnmarshalGraph(data)
}

// ReadGraphFile reads a graph from a file.
//
// Files ending in .yaml or .yml are decoded as YAML; everything else as JSON.
// Both the bare graph form and the {"map": ..., "depth": n} document form are
// accepted; the depth of a document is discarded here (use [ReadDocumentFile]
// to keep it).
func ReadGraphFile(path string) (Graph, error) {
	doc, err := ReadDocumentFile(path)
	if err != nil && !errors.Is(err, ErrEmptyGraph) {
		return Graph{}, err
	}
	return doc.Map, nil
}

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to indented JSON bytes.
func MarshalDocument(d Document) ([]byte, error) {
	d.Map = Normalize(d.Map)
	return json.MarshalIndent(d, "", "  ")
}

// DecodeDocument decodes stored JSON into a document.
//
// Two shapes are accepted: the wrapper {"map": {...}, "depth": n} and a bare
// graph {"topic": ..., "nodes": [...], "edges": [...]}. A payload that
// decodes but has no nodes yields the decoded document and [ErrEmptyGraph].
func DecodeDocument(data []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}

	var doc Document
	if _, wrapped := probe["map"]; wrapped {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode document: %w", err)
		}
	} else {
		g, err := UnmarshalGraph(data)
		if err != nil {
			return Document{}, err
		}
		doc.Map = g
	}
	doc.Map = Normalize(doc.Map)
	if doc.Depth < 0 {
		doc.Depth = 0
	}
	if len(doc.Map.Nodes) == 0 {
		return doc, ErrEmptyGraph
	}
	return doc, nil
}

// DecodeDocumentYAML is the YAML counterpart of [DecodeDocument].
func DecodeDocumentYAML(data []byte) (Document, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("decode yaml: %w", err)
	}

	var doc Document
	if _, wrapped := probe["map"]; wrapped {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode yaml document: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &doc.Map); err != nil {
		return Document{}, fmt.Errorf("decode yaml graph: %w", err)
	}
	doc.Map = Normalize(doc.Map)
	if doc.Depth < 0 {
		doc.Depth = 0
	}
	if len(doc.Map.Nodes) == 0 {
		return doc, ErrEmptyGraph
	}
	return doc, nil
}

// ReadDocumentFile reads a document (or bare graph) from a JSON or YAML file.
func ReadDocumentFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if IsYAML(path) {
		return DecodeDocumentYAML(data)
	}
	return DecodeDocument(data)
}

// IsYAML reports whether path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// =============================================================================
// Internal Helpers
// =============================================================================

// Normalize cleans a decoded graph: ids and edge endpoints are trimmed,
// nodes without an id are dropped and only the first node with a given id
// is kept. Nil slices become empty ones so encoded graphs always carry
// "nodes": [] and "edges": [] instead of null.
func Normalize(g Graph) Graph {
	nodes := make([]Node, 0, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		n.ID = strings.TrimSpace(n.ID)
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}

	edges := make([]Edge, len(g.Edges))
	for i, e := range g.Edges {
		e.From = strings.TrimSpace(e.From)
		e.To = strings.TrimSpace(e.To)
		edges[i] = e
	}

	g.Nodes, g.Edges = nodes, edges
	return g
}
