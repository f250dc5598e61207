package schedule

import "time"

// Iterator walks a window at block granularity, yielding the instants whose
// block is open in the template. It is single-pass: each call to Next
// advances the cursor, and the produced instants are strictly increasing.
type Iterator struct {
	grid   Grid
	cursor time.Time
	end    time.Time
}

// Matches returns an iterator over the open slots inside [start, end).
// The cursor starts at the first block boundary containing start.
func Matches(grid Grid, w Window) *Iterator {
	return &Iterator{
		grid:   grid,
		cursor: Normalize(w.Start),
		end:    w.End.In(Location()),
	}
}

// Next returns the next matching instant, or false once the window is
// exhausted. Every step strictly advances the cursor, so the walk always
// terminates.
func (it *Iterator) Next() (time.Time, bool) {
	for it.cursor.Before(it.end) {
		t := it.cursor
		it.cursor = Increment(t)
		if it.grid.Open(t.Weekday(), Block(t)) {
			return t, true
		}
	}
	return time.Time{}, false
}

// Collect drains the iterator into a slice.
func (it *Iterator) Collect() []time.Time {
	var out []time.Time
	for {
		t, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}
