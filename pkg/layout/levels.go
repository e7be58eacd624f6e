package layout

import "github.com/matzehuels/conceptmap/pkg/concept"

// Levels maps node IDs to their assigned level (0 = top).
type Levels map[string]int

// DefaultMaxLevels is the depth used when none was recorded or requested.
const DefaultMaxLevels = 3

// ClampMaxLevels returns n, or 1 when n is not positive.
func ClampMaxLevels(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// HasProvidedLevels reports whether any node carries a level hint.
func HasProvidedLevels(nodes []concept.Node) bool {
	for _, n := range nodes {
		if n.HasLevel() {
			return true
		}
	}
	return false
}

// AssignLevels gives every node a level in [0, maxLevels-1].
//
// When any node carries a level hint, hints are clamped into range and used
// as-is. Otherwise levels come from a breadth-first walk of outgoing edges
// starting at root, bounded so that nothing is placed below the last level.
// Nodes left without a level afterwards (unreachable, or hint-less in
// provided mode) are placed at level 0.
//
// A node reached at the last allowed level is a leaf: its own children are
// not explored from there, even if they have edges.
//
// maxLevels values below 1 are treated as 1. When hasRoot is false the walk
// is skipped and every node falls back to level 0.
func AssignLevels(nodes []concept.Node, ix *Index, root string, hasRoot bool, maxLevels int) Levels {
	maxLevels = ClampMaxLevels(maxLevels)
	last := maxLevels - 1
	levels := make(Levels, ix.Len())

	if HasProvidedLevels(nodes) {
		for _, n := range nodes {
			if !n.HasLevel() {
				continue
			}
			if _, seen := levels[n.ID]; seen {
				continue
			}
			levels[n.ID] = clamp(*n.Level, 0, last)
		}
	} else if hasRoot && ix.Has(root) {
		bfsLevels(ix, root, last, levels)
	}

	for _, id := range ix.IDs() {
		if _, ok := levels[id]; !ok {
			levels[id] = 0
		}
	}
	return levels
}

// queued is a work-list entry: a node and the level it was discovered at.
type queued struct {
	id    string
	level int
}

// bfsLevels runs the bounded breadth-first traversal from root.
func bfsLevels(ix *Index, root string, last int, levels Levels) {
	levels[root] = 0
	queue := []queued{{id: root, level: 0}}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		next := curr.level + 1
		if next > last {
			continue
		}
		for _, child := range ix.Children(curr.id) {
			if _, ok := levels[child]; ok {
				continue
			}
			levels[child] = next
			if next < last {
				queue = append(queue, queued{id: child, level: next})
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
