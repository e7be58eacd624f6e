package layout

import "github.com/matzehuels/conceptmap/pkg/concept"

// =============================================================================
// Result Types
// =============================================================================

// Concept is a positioned node, ready to be drawn at (X%, Y%).
//
// Connections lists the node's outgoing neighbors before edge filtering, so a
// detail panel can show every relation even when the drawn edge was dropped.
type Concept struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Description string   `json:"description,omitempty"`
	Connections []string `json:"connections"`
}

// Result is the complete layout of one concept graph.
//
// Concepts follow input node order. Rows holds the final left-to-right order
// of node IDs per level and always has MaxLevels entries.
type Result struct {
	Topic     string     `json:"topic"`
	Root      string     `json:"root,omitempty"`
	MaxLevels int        `json:"max_levels"`
	Concepts  []Concept  `json:"concepts"`
	Edges     []Edge     `json:"edges"`
	Rows      [][]string `json:"rows"`
}

// Concept returns the positioned concept with the given ID.
func (r Result) Concept(id string) (Concept, bool) {
	for _, c := range r.Concepts {
		if c.ID == id {
			return c, true
		}
	}
	return Concept{}, false
}

// Levels returns the level of every concept, keyed by ID.
func (r Result) Levels() Levels {
	levels := make(Levels, len(r.Concepts))
	for _, c := range r.Concepts {
		levels[c.ID] = c.Level
	}
	return levels
}

// =============================================================================
// Options
// =============================================================================

// Option configures [Compute].
type Option func(*config)

type config struct {
	labelWords int
}

// WithLabelWords sets how many words of a label are kept in Concept.Name.
// Zero or less disables truncation. The default is [DefaultLabelWords].
func WithLabelWords(n int) Option {
	return func(c *config) { c.labelWords = n }
}

// =============================================================================
// Compute
// =============================================================================

// Compute lays out g with at most maxLevels tiers.
//
// Compute never fails: dangling edges are dropped, unreachable nodes go to
// level 0, an empty graph yields an empty result and maxLevels below 1 is
// treated as 1. A repeated node id keeps its first occurrence. It does not
// modify g and keeps no state between calls, so it is safe to call
// concurrently. Identical inputs always produce identical results.
func Compute(g concept.Graph, maxLevels int, opts ...Option) Result {
	cfg := config{labelWords: DefaultLabelWords}
	for _, opt := range opts {
		opt(&cfg)
	}
	maxLevels = ClampMaxLevels(maxLevels)

	ix := BuildIndex(g.Nodes, g.Edges)
	root, hasRoot := SelectRoot(g, ix)
	levels := AssignLevels(g.Nodes, ix, root, hasRoot, maxLevels)
	anchors, rows := PositionLevels(ix, levels, maxLevels)

	concepts := make([]Concept, 0, ix.Len())
	placed := make(map[string]bool, ix.Len())
	for _, n := range g.Nodes {
		if placed[n.ID] {
			continue
		}
		placed[n.ID] = true
		lvl := levels[n.ID]
		x, ok := anchors[n.ID]
		if !ok {
			x = DefaultAnchor
		}
		concepts = append(concepts, Concept{
			ID:          n.ID,
			Name:        TruncateWords(n.Label, cfg.labelWords),
			Level:       lvl,
			X:           x,
			Y:           YForLevel(lvl, maxLevels),
			Description: n.Description,
			Connections: append([]string{}, ix.Children(n.ID)...),
		})
	}

	return Result{
		Topic:     g.Topic,
		Root:      root,
		MaxLevels: maxLevels,
		Concepts:  concepts,
		Edges:     FilterEdges(g.Edges, levels),
		Rows:      rows,
	}
}
