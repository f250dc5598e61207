package schedule

import (
	"sync"
	"time"
)

// NoBlock is returned by Block for instants that do not sit exactly on a
// block boundary. A misaligned cursor is treated as "not available" rather
// than an error.
const NoBlock = -1

// The engine works in a single fixed zone so block boundaries stay put
// across daylight-saving transitions.
const timezone = "America/Santiago"

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns the zone all schedule arithmetic is performed in.
func Location() *time.Location {
	locOnce.Do(func() {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			panic("schedule: load timezone " + timezone + ": " + err.Error())
		}
		loc = l
	})
	return loc
}

// Block maps an instant to its time-block index. Blocks are keyed by their
// starting hour:
//
//	08:00-10:00 -> 0    14:00-15:30 -> 4
//	10:00-11:30 -> 1    15:30-17:00 -> 5
//	11:30-13:00 -> 2    17:00-18:30 -> 6
//	13:00-14:00 -> 3    18:30-20:00 -> 7
//
// Any other hour yields NoBlock.
func Block(t time.Time) int {
	switch t.In(Location()).Hour() {
	case 8:
		return 0
	case 10:
		return 1
	case 11:
		return 2
	case 13:
		return 3
	case 14:
		return 4
	case 15:
		return 5
	case 17:
		return 6
	case 18:
		return 7
	default:
		return NoBlock
	}
}

// Normalize snaps an instant to the start of its containing block, zeroing
// seconds and anything finer. Instants at or after 20:00 snap to 20:00,
// which Block never matches; Increment then rolls them to the next day.
func Normalize(t time.Time) time.Time {
	t = t.In(Location())
	frac := float64(t.Hour()) + float64(t.Minute())/60

	var hour, minute int
	switch {
	case frac < 10:
		hour, minute = 8, 30
	case frac < 11.5:
		hour, minute = 10, 0
	case frac < 13:
		hour, minute = 11, 30
	case frac < 14:
		hour, minute = 13, 0
	case frac < 15.5:
		hour, minute = 14, 0
	case frac < 17:
		hour, minute = 15, 30
	case frac < 18.5:
		hour, minute = 17, 0
	case frac < 20:
		hour, minute = 18, 30
	default:
		hour, minute = 20, 0
	}

	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, Location())
}

// Increment advances a normalized cursor to the next block start. Blocks are
// 90 minutes apart except for the one-hour 13:00 block, and 20:00 rolls over
// to 08:30 the next day, skipping Sundays entirely.
func Increment(t time.Time) time.Time {
	t = t.In(Location())
	switch {
	case t.Hour() == 13:
		return time.Date(t.Year(), t.Month(), t.Day(), 14, 0, 0, 0, Location())
	case t.Hour() >= 20:
		next := t.Add(12*time.Hour + 30*time.Minute)
		if next.Weekday() == time.Sunday {
			next = next.Add(24 * time.Hour)
		}
		return next
	default:
		return t.Add(90 * time.Minute)
	}
}
