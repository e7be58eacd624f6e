package layout

import (
	"cmp"
	"slices"
)

// Anchors maps node IDs to their horizontal position within a level, as a
// percentage in [0, 100].
type Anchors map[string]float64

// DefaultAnchor is used for a lone node in a level and as the barycenter of a
// node with no parent on the level above.
const DefaultAnchor = 50.0

// GroupByLevel buckets node IDs by level. The result always has maxLevels
// rows (some possibly empty) and each row keeps input node order.
func GroupByLevel(ix *Index, levels Levels, maxLevels int) [][]string {
	maxLevels = ClampMaxLevels(maxLevels)
	rows := make([][]string, maxLevels)
	for i := range rows {
		rows[i] = []string{}
	}
	for _, id := range ix.IDs() {
		lvl := clamp(levels[id], 0, maxLevels-1)
		rows[lvl] = append(rows[lvl], id)
	}
	return rows
}

// PositionLevels computes anchors level by level and returns them together
// with the final left-to-right order of every row.
//
// Level 0 keeps input order. Each later level is ordered by barycenter: the
// mean anchor of a node's parents on the level directly above (or
// [DefaultAnchor] without such parents). The sort is stable, so equal
// barycenters keep input order. Final anchors are then spread evenly over
// [0, 100] in that order, which keeps siblings near their parents without
// letting them overlap.
//
// Rows must be processed top-down because a level's barycenters read the
// final anchors of the level above.
func PositionLevels(ix *Index, levels Levels, maxLevels int) (Anchors, [][]string) {
	rows := GroupByLevel(ix, levels, maxLevels)
	anchors := make(Anchors, ix.Len())

	for i, id := range rows[0] {
		anchors[id] = spread(i, len(rows[0]))
	}

	for l := 1; l < len(rows); l++ {
		type candidate struct {
			id         string
			barycenter float64
		}
		cands := make([]candidate, len(rows[l]))
		for i, id := range rows[l] {
			cands[i] = candidate{id: id, barycenter: barycenter(ix, levels, anchors, id, l-1)}
		}
		slices.SortStableFunc(cands, func(a, b candidate) int {
			return cmp.Compare(a.barycenter, b.barycenter)
		})

		ordered := make([]string, len(cands))
		for i, c := range cands {
			ordered[i] = c.id
			anchors[c.id] = spread(i, len(cands))
		}
		rows[l] = ordered
	}

	return anchors, rows
}

// barycenter returns the mean anchor of id's parents on level above.
func barycenter(ix *Index, levels Levels, anchors Anchors, id string, above int) float64 {
	sum, count := 0.0, 0
	for _, p := range ix.Parents(id) {
		if levels[p] != above {
			continue
		}
		if a, ok := anchors[p]; ok {
			sum += a
			count++
		}
	}
	if count == 0 {
		return DefaultAnchor
	}
	return sum / float64(count)
}

// spread returns the evenly spaced anchor of index i among n slots.
func spread(i, n int) float64 {
	if n <= 1 {
		return DefaultAnchor
	}
	return float64(i) * 100 / float64(n-1)
}
