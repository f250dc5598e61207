package schedule

import "time"

// WindowPeriod is the rolling horizon searched for open slots.
const WindowPeriod = 21 * 24 * time.Hour

// monthDuration is the nominal length of a booking month.
const monthDuration = 30 * 24 * time.Hour

// Window is the half-open [Start, End) range searched for open slots.
type Window struct {
	Start time.Time
	End   time.Time
}

// PickupWindow searches forward from the submission instant.
func PickupWindow(now time.Time) Window {
	now = now.In(Location())
	return Window{Start: now, End: now.Add(WindowPeriod)}
}

// ReturnWindow brackets the booking deadline. An overdue booking still gets
// a forward-looking window anchored at now instead of one frozen at the
// original deadline; a booking ending in the future shifts the window out
// to cover the deadline.
func ReturnWindow(now, bookingStart time.Time, durationMonths int) Window {
	deadline := bookingStart.Add(time.Duration(durationMonths) * monthDuration)
	end := now.Add(WindowPeriod)
	if d := deadline.Add(WindowPeriod); d.After(end) {
		end = d
	}
	end = end.In(Location())
	return Window{Start: end.Add(-WindowPeriod), End: end}
}
