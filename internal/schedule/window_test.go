package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPickupWindow(t *testing.T) {
	now := at(3, 12, 0)
	w := PickupWindow(now)
	assert.True(t, w.Start.Equal(now))
	assert.True(t, w.End.Equal(now.Add(WindowPeriod)))
}

func TestReturnWindowOverdueBooking(t *testing.T) {
	// One-month booking evaluated 40 days in: the deadline already passed,
	// so the window must look forward from now, not stay frozen.
	start := at(3, 10, 0)
	now := start.Add(40 * 24 * time.Hour)
	w := ReturnWindow(now, start, 1)
	assert.True(t, w.End.Equal(now.Add(WindowPeriod)))
	assert.True(t, w.Start.Equal(now))
}

func TestReturnWindowFutureDeadline(t *testing.T) {
	start := at(3, 10, 0)
	now := start.Add(24 * time.Hour)
	w := ReturnWindow(now, start, 2)

	deadline := start.Add(60 * 24 * time.Hour)
	assert.True(t, w.End.Equal(deadline.Add(WindowPeriod)))
	assert.True(t, w.Start.Equal(deadline))
}

func TestReturnWindowSpansExactlyThePeriod(t *testing.T) {
	start := at(3, 10, 0)
	for _, months := range []int{1, 3, 6, 12} {
		w := ReturnWindow(at(10, 9, 0), start, months)
		assert.Equal(t, WindowPeriod, w.End.Sub(w.Start))
	}
}
