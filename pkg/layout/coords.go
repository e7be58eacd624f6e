package layout

import "strings"

// Vertical placement bounds, in percent of the frame height.
const (
	MinY = 10.0
	MaxY = 90.0
)

// Label truncation defaults.
const (
	DefaultLabelWords = 5
	Ellipsis          = "…"
)

// YForLevel maps a level to its vertical position. With a single level every
// node sits at [MinY].
func YForLevel(level, maxLevels int) float64 {
	maxLevels = ClampMaxLevels(maxLevels)
	if maxLevels == 1 {
		return MinY
	}
	step := (MaxY - MinY) / float64(maxLevels-1)
	return MinY + step*float64(level)
}

// TruncateWords shortens text to its first maxWords whitespace-delimited
// words and appends [Ellipsis]. Text with maxWords words or fewer is returned
// unchanged, original spacing included. A non-positive maxWords disables
// truncation.
func TruncateWords(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + Ellipsis
}
