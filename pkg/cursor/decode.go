package cursor

import (
	"encoding/binary"
	"math"
	"time"
	"unicode/utf8"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/errors"
)

// Producers write every numeric slot big-endian.
var byteOrder = binary.BigEndian

// Column returns the descriptor of 1-based column col.
func (c *Cursor) Column(col int) (columnar.ColumnDescriptor, error) {
	if err := c.checkColumn(col); err != nil {
		return columnar.ColumnDescriptor{}, err
	}
	return c.payload.Column(col - 1), nil
}

// Int64 decodes a bigint field of the current row.
func (c *Cursor) Int64(col int) (int64, error) { return c.Int64At(col, c.row) }

// Int64At decodes a bigint field of 1-based row.
func (c *Cursor) Int64At(col, row int) (int64, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeInt64)
	if err != nil {
		return 0, err
	}
	return int64(byteOrder.Uint64(b)), nil
}

// Int32 decodes an integer field of the current row.
func (c *Cursor) Int32(col int) (int32, error) { return c.Int32At(col, c.row) }

// Int32At decodes an integer field of 1-based row.
func (c *Cursor) Int32At(col, row int) (int32, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeInt32)
	if err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b)), nil
}

// Int16 decodes a smallint field of the current row.
func (c *Cursor) Int16(col int) (int16, error) { return c.Int16At(col, c.row) }

// Int16At decodes a smallint field of 1-based row.
func (c *Cursor) Int16At(col, row int) (int16, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeInt16)
	if err != nil {
		return 0, err
	}
	return int16(byteOrder.Uint16(b)), nil
}

// Bool decodes a boolean field of the current row. Any nonzero byte is true.
func (c *Cursor) Bool(col int) (bool, error) { return c.BoolAt(col, c.row) }

// BoolAt decodes a boolean field of 1-based row.
func (c *Cursor) BoolAt(col, row int) (bool, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeBool)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// Float32 decodes a float field of the current row.
func (c *Cursor) Float32(col int) (float32, error) { return c.Float32At(col, c.row) }

// Float32At decodes a float field of 1-based row.
func (c *Cursor) Float32At(col, row int) (float32, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeFloat32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(byteOrder.Uint32(b)), nil
}

// Float64 decodes a double field of the current row.
func (c *Cursor) Float64(col int) (float64, error) { return c.Float64At(col, c.row) }

// Float64At decodes a double field of 1-based row.
func (c *Cursor) Float64At(col, row int) (float64, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeFloat64)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(byteOrder.Uint64(b)), nil
}

// Timestamp decodes a timestamp field of the current row.
func (c *Cursor) Timestamp(col int) (time.Time, error) { return c.TimestampAt(col, c.row) }

// TimestampAt decodes a timestamp field of 1-based row. The slot holds
// microseconds since the Unix epoch; the result is in UTC.
func (c *Cursor) TimestampAt(col, row int) (time.Time, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeTimestamp)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(int64(byteOrder.Uint64(b))).UTC(), nil
}

// String decodes a text field of the current row.
func (c *Cursor) String(col int) (string, error) { return c.StringAt(col, c.row) }

// StringAt decodes the whole stride-wide slot of a text field as UTF-8.
// Padding written by the producer is returned as is.
func (c *Cursor) StringAt(col, row int) (string, error) {
	b, err := c.typedSlot(col, row, columnar.ColumnTypeText)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.Newf(errors.ErrorTypeDecode, "column %d row %d is not valid UTF-8", col, row).
			WithDetail("column", col).
			WithDetail("row", row)
	}
	return string(b), nil
}

// Bytes returns a copy of the raw slot of any column in the current row.
func (c *Cursor) Bytes(col int) ([]byte, error) { return c.BytesAt(col, c.row) }

// BytesAt returns a copy of the raw slot of any column in 1-based row.
func (c *Cursor) BytesAt(col, row int) ([]byte, error) {
	b, err := c.slot(col, row)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Object decodes a field of the current row according to its declared type.
func (c *Cursor) Object(col int) (columnar.Value, error) { return c.ObjectAt(col, c.row) }

// ObjectAt decodes a field of 1-based row according to its declared type.
func (c *Cursor) ObjectAt(col, row int) (columnar.Value, error) {
	if err := c.checkColumn(col); err != nil {
		return nil, err
	}
	if err := c.checkRow(row); err != nil {
		return nil, err
	}

	var (
		v   columnar.Value
		err error
	)
	switch t := c.payload.Column(col - 1).Type; t {
	case columnar.ColumnTypeInt64:
		var x int64
		x, err = c.Int64At(col, row)
		v = columnar.Int64Value(x)
	case columnar.ColumnTypeInt32:
		var x int32
		x, err = c.Int32At(col, row)
		v = columnar.Int32Value(x)
	case columnar.ColumnTypeInt16:
		var x int16
		x, err = c.Int16At(col, row)
		v = columnar.Int16Value(x)
	case columnar.ColumnTypeBool:
		var x bool
		x, err = c.BoolAt(col, row)
		v = columnar.BoolValue(x)
	case columnar.ColumnTypeFloat32:
		var x float32
		x, err = c.Float32At(col, row)
		v = columnar.Float32Value(x)
	case columnar.ColumnTypeFloat64:
		var x float64
		x, err = c.Float64At(col, row)
		v = columnar.Float64Value(x)
	case columnar.ColumnTypeText:
		var x string
		x, err = c.StringAt(col, row)
		v = columnar.TextValue(x)
	case columnar.ColumnTypeTimestamp:
		var x time.Time
		x, err = c.TimestampAt(col, row)
		v = columnar.TimestampValue(x)
	default:
		// array and lob columns
		return nil, errors.Newf(errors.ErrorTypeUnsupportedType, "conversion from %s is not supported", t).
			WithDetail("column", col)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// typedSlot returns the slot of (col, row) after checking that the column
// is declared as want.
func (c *Cursor) typedSlot(col, row int, want columnar.ColumnType) ([]byte, error) {
	if err := c.checkColumn(col); err != nil {
		return nil, err
	}
	if err := c.checkRow(row); err != nil {
		return nil, err
	}
	if got := c.payload.Column(col - 1).Type; got != want {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch, "column %d is %s, not %s", col, got, want).
			WithDetail("column", col).
			WithDetail("declared", got.String()).
			WithDetail("requested", want.String())
	}
	return c.payload.Buffer(col-1).Slot(row - 1)
}

func (c *Cursor) slot(col, row int) ([]byte, error) {
	if err := c.checkColumn(col); err != nil {
		return nil, err
	}
	if err := c.checkRow(row); err != nil {
		return nil, err
	}
	return c.payload.Buffer(col-1).Slot(row - 1)
}

func (c *Cursor) checkColumn(col int) error {
	if col < 1 || col > c.payload.NumColumns() {
		return errors.Newf(errors.ErrorTypeOutOfRange, "column %d outside [1, %d]", col, c.payload.NumColumns()).
			WithDetail("column", col)
	}
	return nil
}

func (c *Cursor) checkRow(row int) error {
	if row < 1 || row > c.numRows {
		return errors.Newf(errors.ErrorTypeOutOfRange, "row %d outside [1, %d]", row, c.numRows).
			WithDetail("row", row)
	}
	return nil
}
