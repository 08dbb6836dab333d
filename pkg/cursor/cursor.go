// Package cursor provides positioned, typed access to a decoded result
// payload.
//
// A Cursor starts before the first row. Navigation moves a 1-based row
// position; getters decode one field of the current row (or of an explicit
// row) straight out of the column buffers. Getters never move the cursor.
//
// A Cursor is not safe for concurrent use.
package cursor

import (
	"github.com/ajitpratap0/qflock/pkg/columnar"
)

// Cursor is a movable row position over an immutable payload.
type Cursor struct {
	payload *columnar.Payload
	numRows int
	// row is 1-based; 0 is before the first row and numRows+1 after the last.
	row int
}

// New creates a cursor positioned before the first row.
func New(payload *columnar.Payload) *Cursor {
	return &Cursor{
		payload: payload,
		numRows: payload.NumRows(),
	}
}

// NumRows returns the number of rows in the result
func (c *Cursor) NumRows() int { return c.numRows }

// NumColumns returns the number of columns in the result
func (c *Cursor) NumColumns() int { return c.payload.NumColumns() }

// Row returns the current 1-based row position
func (c *Cursor) Row() int { return c.row }

// Next advances one row and reports whether the cursor is on a row. Once
// past the last row it stays there and keeps returning false.
func (c *Cursor) Next() bool {
	if c.row <= c.numRows {
		c.row++
	}
	return c.row <= c.numRows
}

// Previous moves back one row, stopping at the before-first position. It
// returns false exactly when the cursor ends up before the first row.
func (c *Cursor) Previous() bool {
	if c.row > 0 {
		c.row--
	}
	return c.row != 0
}

// First moves to row 1.
func (c *Cursor) First() bool {
	c.row = 1
	return true
}

// Last moves to the last row.
func (c *Cursor) Last() bool {
	c.row = c.numRows
	return true
}

// BeforeFirst moves before the first row
func (c *Cursor) BeforeFirst() { c.row = 0 }

// AfterLast moves past the last row
func (c *Cursor) AfterLast() { c.row = c.numRows + 1 }

// Absolute moves to row r. Negative values count back from the end, so -1
// is the last row. Positions outside the result clamp to before-first or
// after-last. It reports whether the cursor is on a row.
func (c *Cursor) Absolute(r int) bool {
	if r < 0 {
		r = c.numRows + 1 + r
	}
	c.row = c.clamp(r)
	return c.onRow()
}

// Relative moves delta rows from the current position, clamping like
// Absolute.
func (c *Cursor) Relative(delta int) bool {
	c.row = c.clamp(c.row + delta)
	return c.onRow()
}

// IsBeforeFirst reports whether the cursor is before the first row
func (c *Cursor) IsBeforeFirst() bool { return c.row == 0 }

// IsAfterLast reports whether the cursor is past the last row
func (c *Cursor) IsAfterLast() bool { return c.row > c.numRows }

// IsFirst reports whether the cursor is on row 1
func (c *Cursor) IsFirst() bool { return c.row == 1 }

// IsLast reports whether the cursor is on the last row
func (c *Cursor) IsLast() bool { return c.row == c.numRows }

func (c *Cursor) onRow() bool {
	return c.row >= 1 && c.row <= c.numRows
}

func (c *Cursor) clamp(r int) int {
	if r < 0 {
		return 0
	}
	if r > c.numRows+1 {
		return c.numRows + 1
	}
	return r
}
