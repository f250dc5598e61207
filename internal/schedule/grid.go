package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// Days covers Monday through Saturday. Sunday has no row and is never
	// offered for pickups or returns.
	Days = 6
	// BlocksPerDay is the number of bookable time blocks within a day.
	BlocksPerDay = 8
)

// Grid is the weekly availability template: one row per day (Monday first)
// and one cell per time block, true meaning the slot is open.
type Grid [Days][BlocksPerDay]bool

// ParseGrid validates raw row data and builds a Grid. The input must hold
// exactly 6 rows of exactly 8 booleans; anything else is rejected so a
// partial write can never replace the stored template.
func ParseGrid(rows [][]bool) (Grid, error) {
	var grid Grid
	if len(rows) != Days {
		return Grid{}, fmt.Errorf("expected %d rows, got %d", Days, len(rows))
	}
	for i, row := range rows {
		if len(row) != BlocksPerDay {
			return Grid{}, fmt.Errorf("row %d: expected %d blocks, got %d", i, BlocksPerDay, len(row))
		}
		for j, open := range row {
			grid[i][j] = open
		}
	}
	return grid, nil
}

// Rows returns the grid as a slice-of-slices, the shape used on the wire
// and in the database JSON column.
func (g Grid) Rows() [][]bool {
	rows := make([][]bool, Days)
	for i := range g {
		rows[i] = make([]bool, BlocksPerDay)
		copy(rows[i], g[i][:])
	}
	return rows
}

// Open reports whether the block is open on the given weekday. Sundays and
// out-of-range blocks are always closed.
func (g Grid) Open(day time.Weekday, block int) bool {
	row := int(day) - 1
	if row < 0 || row >= Days {
		return false
	}
	if block < 0 || block >= BlocksPerDay {
		return false
	}
	return g[row][block]
}

// Value implements driver.Valuer, storing the grid as JSON.
func (g Grid) Value() (driver.Value, error) {
	return json.Marshal(g.Rows())
}

// Scan implements sql.Scanner for the JSON column.
func (g *Grid) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*g = Grid{}
		return nil
	default:
		return fmt.Errorf("scan grid: unsupported type %T", src)
	}
	var rows [][]bool
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("scan grid: %w", err)
	}
	parsed, err := ParseGrid(rows)
	if err != nil {
		return fmt.Errorf("scan grid: %w", err)
	}
	*g = parsed
	return nil
}
