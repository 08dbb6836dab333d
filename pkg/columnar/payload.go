package columnar

import "fmt"

// Payload is the fully decoded body of a result: one buffer per declared
// column, in declared order, all with the same row count.
type Payload struct {
	columns []ColumnDescriptor
	buffers []*ColumnBuffer
	numRows int
}

// NewPayload groups buffers under their descriptors and checks the payload
// invariants: one buffer per column, identical row counts, and every buffer
// sized numRows*width for its column.
func NewPayload(columns []ColumnDescriptor, buffers []*ColumnBuffer, numRows int) (*Payload, error) {
	if len(columns) != len(buffers) {
		return nil, fmt.Errorf("payload has %d buffers for %d columns", len(buffers), len(columns))
	}
	for i, buf := range buffers {
		if buf == nil {
			return nil, fmt.Errorf("column %d has no buffer", i+1)
		}
		if buf.NumRows() != numRows {
			return nil, fmt.Errorf("column %d has %d rows, want %d", i+1, buf.NumRows(), numRows)
		}
		if buf.Width() != columns[i].Width {
			return nil, fmt.Errorf("column %d buffer width %d does not match declared width %d",
				i+1, buf.Width(), columns[i].Width)
		}
	}

	cols := make([]ColumnDescriptor, len(columns))
	copy(cols, columns)
	return &Payload{columns: cols, buffers: buffers, numRows: numRows}, nil
}

// NumRows returns the row count shared by all columns
func (p *Payload) NumRows() int { return p.numRows }

// NumColumns returns the column count
func (p *Payload) NumColumns() int { return len(p.columns) }

// Column returns the descriptor at 0-based position i
func (p *Payload) Column(i int) ColumnDescriptor { return p.columns[i] }

// Columns returns a copy of all descriptors
func (p *Payload) Columns() []ColumnDescriptor {
	cols := make([]ColumnDescriptor, len(p.columns))
	copy(cols, p.columns)
	return cols
}

// Buffer returns the buffer at 0-based position i
func (p *Payload) Buffer(i int) *ColumnBuffer { return p.buffers[i] }

// MemoryUsage returns the total number of buffered bytes
func (p *Payload) MemoryUsage() int64 {
	var total int64
	for _, b := range p.buffers {
		total += int64(b.Len())
	}
	return total
}
