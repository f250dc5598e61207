package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-03 is a Monday, far from Chile's DST transitions.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.June, day, hour, minute, 0, 0, Location())
}

func TestNormalizeSnapsToBlockStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{at(3, 0, 0), at(3, 8, 30)},
		{at(3, 9, 59), at(3, 8, 30)},
		{at(3, 10, 0), at(3, 10, 0)},
		{at(3, 11, 29), at(3, 10, 0)},
		{at(3, 11, 30), at(3, 11, 30)},
		{at(3, 12, 59), at(3, 11, 30)},
		{at(3, 13, 0), at(3, 13, 0)},
		{at(3, 13, 59), at(3, 13, 0)},
		{at(3, 14, 0), at(3, 14, 0)},
		{at(3, 15, 29), at(3, 14, 0)},
		{at(3, 15, 30), at(3, 15, 30)},
		{at(3, 16, 59), at(3, 15, 30)},
		{at(3, 17, 0), at(3, 17, 0)},
		{at(3, 18, 29), at(3, 17, 0)},
		{at(3, 18, 30), at(3, 18, 30)},
		{at(3, 19, 59), at(3, 18, 30)},
		{at(3, 20, 0), at(3, 20, 0)},
		{at(3, 23, 45), at(3, 20, 0)},
	}
	for _, tc := range cases {
		assert.True(t, Normalize(tc.in).Equal(tc.want), "normalize(%v) = %v, want %v", tc.in, Normalize(tc.in), tc.want)
	}
}

func TestNormalizeZeroesSeconds(t *testing.T) {
	in := time.Date(2024, time.June, 3, 10, 12, 33, 987654321, Location())
	got := Normalize(in)
	assert.Zero(t, got.Second())
	assert.Zero(t, got.Nanosecond())
	assert.True(t, got.Equal(at(3, 10, 0)))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []time.Time{
		at(3, 0, 0), at(3, 8, 30), at(3, 9, 17), at(3, 11, 30),
		at(3, 12, 59), at(3, 13, 30), at(3, 16, 1), at(3, 19, 59),
		at(3, 20, 0), at(3, 22, 40), at(8, 7, 15),
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.True(t, Normalize(once).Equal(once), "normalize not idempotent for %v", in)
	}
}

func TestBlockIndices(t *testing.T) {
	assert.Equal(t, 0, Block(at(3, 8, 30)))
	assert.Equal(t, 1, Block(at(3, 10, 0)))
	assert.Equal(t, 2, Block(at(3, 11, 30)))
	assert.Equal(t, 3, Block(at(3, 13, 0)))
	assert.Equal(t, 4, Block(at(3, 14, 0)))
	assert.Equal(t, 5, Block(at(3, 15, 30)))
	assert.Equal(t, 6, Block(at(3, 17, 0)))
	assert.Equal(t, 7, Block(at(3, 18, 30)))

	// Hours off the canonical boundaries silently match nothing.
	assert.Equal(t, NoBlock, Block(at(3, 9, 0)))
	assert.Equal(t, NoBlock, Block(at(3, 12, 0)))
	assert.Equal(t, NoBlock, Block(at(3, 20, 0)))
}

func TestIncrementWithinDay(t *testing.T) {
	assert.True(t, Increment(at(3, 8, 30)).Equal(at(3, 10, 0)))
	assert.True(t, Increment(at(3, 10, 0)).Equal(at(3, 11, 30)))
	assert.True(t, Increment(at(3, 11, 30)).Equal(at(3, 13, 0)))
	assert.True(t, Increment(at(3, 13, 0)).Equal(at(3, 14, 0)))
	assert.True(t, Increment(at(3, 14, 0)).Equal(at(3, 15, 30)))
	assert.True(t, Increment(at(3, 18, 30)).Equal(at(3, 20, 0)))
}

func TestIncrementRollsToNextDay(t *testing.T) {
	// Tuesday 20:00 rolls to Wednesday 08:30.
	next := Increment(at(4, 20, 0))
	assert.True(t, next.Equal(at(5, 8, 30)))
}

func TestIncrementSkipsSunday(t *testing.T) {
	// Saturday 2024-06-08 at 20:00 must land on Monday, never Sunday.
	next := Increment(at(8, 20, 0))
	require.Equal(t, time.Monday, next.Weekday())
	assert.True(t, next.Equal(at(10, 8, 30)))
}
