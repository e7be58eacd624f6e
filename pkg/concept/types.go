package concept

import (
	"encoding/json"
	"math"
	"strings"
)

// =============================================================================
// Constants
// =============================================================================

// MapNamePrefix is prepended to the topic to build a stored map's display name.
const MapNamePrefix = "Mapa: "

// DefaultClass is the class assigned to maps generated without a course.
const DefaultClass = "Mapa Conceptual"

// =============================================================================
// Graph - Raw Concept Graph
// =============================================================================

// Graph is the raw concept graph produced by a generator.
//
// It is owned by the caller. Nothing in this module mutates a Graph that was
// handed to it; layout and analysis build their own indexes.
type Graph struct {
	Topic string `json:"topic" yaml:"topic" bson:"topic"`
	Nodes []Node `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" bson:"edges"`
}

// Node is a single concept.
//
// Level is an optional hint from the author (or the model). When any node of
// a graph carries a level, layout uses the provided levels instead of
// computing them.
type Node struct {
	ID          string `json:"id" yaml:"id" bson:"id"`
	Label       string `json:"label" yaml:"label" bson:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Level       *int   `json:"level,omitempty" yaml:"level,omitempty" bson:"level,omitempty"`
}

// Edge is a labeled, directed relation between two concepts.
// Edges may reference ids that do not exist in the node list.
type Edge struct {
	From     string `json:"from" yaml:"from" bson:"from"`
	To       string `json:"to" yaml:"to" bson:"to"`
	Relation string `json:"relation" yaml:"relation" bson:"relation"`
}

// IntPtr returns a pointer to v. Handy for building nodes with a level hint.
func IntPtr(v int) *int { return &v }

// HasLevel reports whether the node carries a level hint.
func (n Node) HasLevel() bool { return n.Level != nil }

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if strings.TrimSpace(n.Label) != "" {
		return n.Label
	}
	return n.ID
}

// UnmarshalJSON decodes a node leniently.
//
// Models emit levels as integers, floats ("2.0") or occasionally strings.
// Numeric levels are floored to an int and saturated to the int32 range, so
// an absurd hint still sorts below (or above) every real level. Anything else
// is ignored as if the field were absent.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		Label       string          `json:"label"`
		Description string          `json:"description"`
		Level       json.RawMessage `json:"level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{ID: raw.ID, Label: raw.Label, Description: raw.Description}
	if len(raw.Level) == 0 || string(raw.Level) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw.Level, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = max(math.MinInt32, min(math.Floor(f), math.MaxInt32))
	n.Level = IntPtr(int(f))
	return nil
}

// =============================================================================
// Document - Persistence Unit
// =============================================================================

// Document is the unit that gets stored and restored: the raw graph plus the
// depth (max levels) it was generated with. Depth zero means "not recorded".
type Document struct {
	Map   Graph `json:"map" yaml:"map" bson:"map"`
	Depth int   `json:"depth,omitempty" yaml:"depth,omitempty" bson:"depth,omitempty"`
}

// Name returns the display name for a map about this topic.
func Name(topic string) string {
	return MapNamePrefix + strings.TrimSpace(topic)
}
