package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openGrid() Grid {
	var g Grid
	for i := range g {
		for j := range g[i] {
			g[i][j] = true
		}
	}
	return g
}

func TestMatchesSingleMondayBlock(t *testing.T) {
	var grid Grid
	grid[0][0] = true // Monday, first block

	w := Window{Start: at(3, 0, 0), End: at(10, 0, 0)}
	got := Matches(grid, w).Collect()

	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(at(3, 8, 30)))
}

func TestMatchesFullWeek(t *testing.T) {
	w := Window{Start: at(3, 0, 0), End: at(10, 0, 0)}
	got := Matches(openGrid(), w).Collect()

	// Six days of eight blocks each; Sunday contributes nothing.
	assert.Len(t, got, Days*BlocksPerDay)
}

func TestMatchesStrictlyIncreasing(t *testing.T) {
	w := Window{Start: at(3, 0, 0), End: at(17, 0, 0)}
	got := Matches(openGrid(), w).Collect()

	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].After(got[i-1]), "matches out of order at %d", i)
	}
}

func TestMatchesWindowContainment(t *testing.T) {
	w := Window{Start: at(3, 0, 0), End: at(12, 0, 0)}
	for _, m := range Matches(openGrid(), w).Collect() {
		assert.False(t, m.Before(w.Start))
		assert.True(t, m.Before(w.End))
	}
}

func TestMatchesNeverOnSunday(t *testing.T) {
	w := Window{Start: at(3, 0, 0), End: at(24, 0, 0)}
	for _, m := range Matches(openGrid(), w).Collect() {
		assert.NotEqual(t, time.Sunday, m.Weekday())
	}
}

func TestMatchesEmptyTemplate(t *testing.T) {
	w := Window{Start: at(3, 0, 0), End: at(24, 0, 0)}
	assert.Empty(t, Matches(Grid{}, w).Collect())
}

func TestMatchesClosedBlocksSkipped(t *testing.T) {
	var grid Grid
	grid[1][3] = true // Tuesday 13:00
	grid[5][7] = true // Saturday 18:30

	w := Window{Start: at(3, 0, 0), End: at(10, 0, 0)}
	got := Matches(grid, w).Collect()

	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(at(4, 13, 0)))
	assert.True(t, got[1].Equal(at(8, 18, 30)))
}

func TestMatchesMidWindowStart(t *testing.T) {
	// Starting mid-afternoon Monday skips that morning's blocks.
	w := Window{Start: at(3, 14, 0), End: at(4, 0, 0)}
	got := Matches(openGrid(), w).Collect()

	require.Len(t, got, 4)
	assert.True(t, got[0].Equal(at(3, 14, 0)))
	assert.True(t, got[3].Equal(at(3, 18, 30)))
}

func TestMatchesMidBlockStartSnapsBack(t *testing.T) {
	var grid Grid
	grid[0][0] = true // Monday, first block

	// 09:00 falls inside the 08:30 block, so the cursor snaps back to the
	// block boundary and the boundary instant is emitted even though it
	// precedes the window start.
	w := Window{Start: at(3, 9, 0), End: at(10, 0, 0)}
	got := Matches(grid, w).Collect()

	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(at(3, 8, 30)))
	assert.True(t, got[0].Before(w.Start))
}

func TestIteratorIsSinglePass(t *testing.T) {
	w := Window{Start: at(3, 0, 0), End: at(4, 0, 0)}
	it := Matches(openGrid(), w)
	first := it.Collect()
	assert.Len(t, first, BlocksPerDay)
	assert.Empty(t, it.Collect())
}
