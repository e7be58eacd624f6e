package analysis

import (
	"slices"

	"github.com/matzehuels/conceptmap/pkg/layout"
)

// CountCrossings returns the number of pairwise crossings among edges drawn
// between adjacent rows. rows is the left-to-right order of node IDs per
// level, as in [layout.Result].Rows.
//
// Edges pointing upward are counted as if they pointed down, since only the
// segment between the two rows matters. Edges that do not join adjacent
// rows are ignored.
func CountCrossings(rows [][]string, edges []layout.Edge) int {
	type slot struct{ row, pos int }
	where := make(map[string]slot)
	for r, row := range rows {
		for i, id := range row {
			if _, dup := where[id]; !dup {
				where[id] = slot{r, i}
			}
		}
	}

	between := make([][]segment, len(rows))
	for _, e := range edges {
		from, okFrom := where[e.From]
		to, okTo := where[e.To]
		if !okFrom || !okTo {
			continue
		}
		if from.row > to.row {
			from, to = to, from
		}
		if to.row-from.row != 1 {
			continue
		}
		between[from.row] = append(between[from.row], segment{from.pos, to.pos})
	}

	total := 0
	for r := 0; r+1 < len(rows); r++ {
		total += countLayerCrossings(between[r], len(rows[r+1]))
	}
	return total
}

// segment is an edge between two adjacent rows, as positions in each row.
type segment struct{ upper, lower int }

// countLayerCrossings counts inversions of lower positions once segments are
// sorted by upper position. Two segments cross if and only if
// upper1 < upper2 and lower1 > lower2. Segments sharing an endpoint never
// cross.
func countLayerCrossings(segs []segment, width int) int {
	if len(segs) < 2 {
		return 0
	}
	segs = slices.Clone(segs)
	slices.SortFunc(segs, func(a, b segment) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, width+1)
	crossings := 0
	for start := 0; start < len(segs); {
		// Segments leaving the same upper node are queried before any of
		// them is added so they are not counted against each other.
		end := start
		for end < len(segs) && segs[end].upper == segs[start].upper {
			end++
		}
		for _, s := range segs[start:end] {
			crossings += start - prefixSum(fenwick, s.lower)
		}
		for _, s := range segs[start:end] {
			for i := s.lower + 1; i < len(fenwick); i += i & -i {
				fenwick[i]++
			}
		}
		start = end
	}
	return crossings
}

// prefixSum returns how many added segments end at or left of pos.
func prefixSum(fenwick []int, pos int) int {
	sum := 0
	for i := pos + 1; i > 0; i -= i & -i {
		sum += fenwick[i]
	}
	return sum
}
