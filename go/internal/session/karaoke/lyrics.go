package karaoke

import (
	"sort"

	"github.com/mcdev12/nota/go/internal/models"
)

// ActiveLine returns the index of the last line whose time is at or before pos,
// or -1 before the first line. lyrics must be sorted by time.
func ActiveLine(lyrics []models.LyricLine, pos float64) int {
	// first line strictly after pos
	i := sort.Search(len(lyrics), func(i int) bool { return lyrics[i].Time > pos })
	return i - 1
}
