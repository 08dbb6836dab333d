package columnar

import (
	"fmt"
	"math"
)

// ColumnBuffer holds numRows fixed-width slots in one contiguous region.
// Slot i occupies [i*width, (i+1)*width). A buffer is never mutated after
// construction.
type ColumnBuffer struct {
	data    []byte
	width   int
	numRows int
}

// NewColumnBuffer adopts data as the backing store of a column. The length
// of data must be exactly numRows*width.
func NewColumnBuffer(data []byte, width, numRows int) (*ColumnBuffer, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	if numRows < 0 {
		return nil, fmt.Errorf("row count cannot be negative, got %d", numRows)
	}
	if numRows > math.MaxInt/width {
		return nil, fmt.Errorf("%d rows x %d bytes overflows the addressable size", numRows, width)
	}
	if len(data) != width*numRows {
		return nil, fmt.Errorf("buffer holds %d bytes, want %d rows x %d bytes = %d",
			len(data), numRows, width, width*numRows)
	}
	return &ColumnBuffer{data: data, width: width, numRows: numRows}, nil
}

// Width returns the slot size in bytes
func (b *ColumnBuffer) Width() int { return b.width }

// NumRows returns the number of slots
func (b *ColumnBuffer) NumRows() int { return b.numRows }

// Len returns the buffer size in bytes
func (b *ColumnBuffer) Len() int { return len(b.data) }

// Slot returns the bytes of 0-based slot i. The returned slice aliases the
// buffer and must not be modified.
func (b *ColumnBuffer) Slot(i int) ([]byte, error) {
	if i < 0 || i >= b.numRows {
		return nil, fmt.Errorf("slot %d outside [0, %d)", i, b.numRows)
	}
	off := i * b.width
	return b.data[off : off+b.width : off+b.width], nil
}

// Bytes returns the whole backing region. It must not be modified.
func (b *ColumnBuffer) Bytes() []byte {
	return b.data
}
