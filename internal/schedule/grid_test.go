package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGridRoundTrip(t *testing.T) {
	rows := make([][]bool, Days)
	for i := range rows {
		rows[i] = make([]bool, BlocksPerDay)
		rows[i][i%BlocksPerDay] = true
	}
	grid, err := ParseGrid(rows)
	require.NoError(t, err)
	assert.Equal(t, rows, grid.Rows())
}

func TestParseGridRejectsWrongShape(t *testing.T) {
	short := make([][]bool, Days-1)
	for i := range short {
		short[i] = make([]bool, BlocksPerDay)
	}
	_, err := ParseGrid(short)
	assert.Error(t, err)

	narrow := make([][]bool, Days)
	for i := range narrow {
		narrow[i] = make([]bool, BlocksPerDay)
	}
	narrow[2] = make([]bool, BlocksPerDay-1)
	_, err = ParseGrid(narrow)
	assert.Error(t, err)

	_, err = ParseGrid(nil)
	assert.Error(t, err)
}

func TestGridOpenGuardsRanges(t *testing.T) {
	grid := openGrid()
	assert.True(t, grid.Open(time.Monday, 0))
	assert.True(t, grid.Open(time.Saturday, BlocksPerDay-1))

	// Sunday has no row; out-of-range blocks are closed.
	assert.False(t, grid.Open(time.Sunday, 0))
	assert.False(t, grid.Open(time.Monday, NoBlock))
	assert.False(t, grid.Open(time.Monday, BlocksPerDay))
}

func TestGridScanValue(t *testing.T) {
	var grid Grid
	grid[0][0] = true
	grid[5][7] = true

	raw, err := grid.Value()
	require.NoError(t, err)

	var scanned Grid
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, grid, scanned)
}

func TestGridScanRejectsMalformedJSON(t *testing.T) {
	var g Grid
	assert.Error(t, g.Scan([]byte(`{"not":"a grid"}`)))
	assert.Error(t, g.Scan([]byte(`[[true]]`)))
}
