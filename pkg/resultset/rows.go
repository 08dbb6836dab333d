package resultset

import (
	"database/sql/driver"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/errors"
)

// Rows adapts a result to database/sql/driver.Rows. The adapter walks the
// result forward from its current position; closing it closes the result.
func (r *ResultSet) Rows() driver.Rows {
	return &rows{rs: r}
}

type rows struct {
	rs *ResultSet
}

var (
	_ driver.Rows                           = (*rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*rows)(nil)
	_ driver.RowsColumnTypeScanType         = (*rows)(nil)
	_ driver.RowsColumnTypeLength           = (*rows)(nil)
)

func (r *rows) Columns() []string {
	return r.rs.meta.Names()
}

func (r *rows) Close() error {
	return r.rs.Close()
}

// Next fills dest with the next row. Int32, Int16 and Float32 values are
// widened to the driver's int64 and float64; array and lob columns are
// returned as raw bytes.
func (r *rows) Next(dest []driver.Value) error {
	if err := r.rs.checkOpen("Next"); err != nil {
		return err
	}
	// the cursor stays put when dest cannot hold a row
	if len(dest) != r.rs.meta.ColumnCount() {
		return r.rs.fail(errors.Newf(errors.ErrorTypeValidation, "destination has %d slots for %d columns",
			len(dest), r.rs.meta.ColumnCount()))
	}
	ok, err := r.rs.Next()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}

	for i := range dest {
		col := i + 1
		if !r.rs.meta.columns[i].Type.Decodable() {
			b, err := r.rs.Bytes(col)
			if err != nil {
				return err
			}
			dest[i] = b
			continue
		}
		v, err := r.rs.Object(col)
		if err != nil {
			return err
		}
		dest[i] = driverValue(v)
	}
	return nil
}

func driverValue(v columnar.Value) driver.Value {
	switch v := v.(type) {
	case columnar.Int64Value:
		return int64(v)
	case columnar.Int32Value:
		return int64(v)
	case columnar.Int16Value:
		return int64(v)
	case columnar.BoolValue:
		return bool(v)
	case columnar.Float32Value:
		return float64(v)
	case columnar.Float64Value:
		return float64(v)
	case columnar.TextValue:
		return string(v)
	case columnar.TimestampValue:
		return time.Time(v)
	default:
		return nil
	}
}

func (r *rows) ColumnTypeDatabaseTypeName(index int) string {
	return strings.ToUpper(r.rs.meta.columns[index].Type.String())
}

func (r *rows) ColumnTypeScanType(index int) reflect.Type {
	switch r.rs.meta.columns[index].Type {
	case columnar.ColumnTypeInt64, columnar.ColumnTypeInt32, columnar.ColumnTypeInt16:
		return reflect.TypeOf(int64(0))
	case columnar.ColumnTypeBool:
		return reflect.TypeOf(false)
	case columnar.ColumnTypeFloat32, columnar.ColumnTypeFloat64:
		return reflect.TypeOf(float64(0))
	case columnar.ColumnTypeText:
		return reflect.TypeOf("")
	case columnar.ColumnTypeTimestamp:
		return reflect.TypeOf(time.Time{})
	default:
		return reflect.TypeOf([]byte(nil))
	}
}

// ColumnTypeLength reports the stride of text columns.
func (r *rows) ColumnTypeLength(index int) (int64, bool) {
	c := r.rs.meta.columns[index]
	if c.Type != columnar.ColumnTypeText {
		return 0, false
	}
	return int64(c.Width), true
}
