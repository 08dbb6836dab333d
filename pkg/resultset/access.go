package resultset

import (
	"time"

	"github.com/ajitpratap0/qflock/pkg/columnar"
)

// read runs a cursor call on an open result and counts its failure.
func read[T any](r *ResultSet, op string, fn func() (T, error)) (T, error) {
	var zero T
	if err := r.checkOpen(op); err != nil {
		return zero, err
	}
	v, err := fn()
	if err != nil {
		return zero, r.fail(err)
	}
	return v, nil
}

func byName[T any](r *ResultSet, name string, get func(int) (T, error)) (T, error) {
	col, err := r.FindColumn(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(col)
}

func (r *ResultSet) move(op string, fn func() bool) (bool, error) {
	if err := r.checkOpen(op); err != nil {
		return false, err
	}
	return fn(), nil
}

// Next advances one row and reports whether the cursor is on a row.
func (r *ResultSet) Next() (bool, error) {
	return r.move("Next", func() bool { return r.cursor.Next() })
}

// Previous moves back one row and reports whether the cursor is on a row.
func (r *ResultSet) Previous() (bool, error) {
	return r.move("Previous", func() bool { return r.cursor.Previous() })
}

// First moves to the first row.
func (r *ResultSet) First() (bool, error) {
	return r.move("First", func() bool { return r.cursor.First() })
}

// Last moves to the last row.
func (r *ResultSet) Last() (bool, error) {
	return r.move("Last", func() bool { return r.cursor.Last() })
}

// Absolute moves to 1-based row n; negative n counts from the end.
func (r *ResultSet) Absolute(n int) (bool, error) {
	return r.move("Absolute", func() bool { return r.cursor.Absolute(n) })
}

// Relative moves delta rows from the current position.
func (r *ResultSet) Relative(delta int) (bool, error) {
	return r.move("Relative", func() bool { return r.cursor.Relative(delta) })
}

// BeforeFirst moves before the first row.
func (r *ResultSet) BeforeFirst() error {
	_, err := r.move("BeforeFirst", func() bool { r.cursor.BeforeFirst(); return false })
	return err
}

// AfterLast moves past the last row.
func (r *ResultSet) AfterLast() error {
	_, err := r.move("AfterLast", func() bool { r.cursor.AfterLast(); return false })
	return err
}

// IsBeforeFirst reports whether the cursor is before the first row.
func (r *ResultSet) IsBeforeFirst() (bool, error) {
	return r.move("IsBeforeFirst", func() bool { return r.cursor.IsBeforeFirst() })
}

// IsAfterLast reports whether the cursor is past the last row.
func (r *ResultSet) IsAfterLast() (bool, error) {
	return r.move("IsAfterLast", func() bool { return r.cursor.IsAfterLast() })
}

// IsFirst reports whether the cursor is on the first row.
func (r *ResultSet) IsFirst() (bool, error) {
	return r.move("IsFirst", func() bool { return r.cursor.IsFirst() })
}

// IsLast reports whether the cursor is on the last row.
func (r *ResultSet) IsLast() (bool, error) {
	return r.move("IsLast", func() bool { return r.cursor.IsLast() })
}

// Row returns the current 1-based row, 0 before the first row.
func (r *ResultSet) Row() (int, error) {
	return read(r, "Row", func() (int, error) { return r.cursor.Row(), nil })
}

// NumRows returns the number of rows in the result.
func (r *ResultSet) NumRows() (int, error) {
	return read(r, "NumRows", func() (int, error) { return r.cursor.NumRows(), nil })
}

func (r *ResultSet) Int64(col int) (int64, error) {
	return read(r, "Int64", func() (int64, error) { return r.cursor.Int64(col) })
}

func (r *ResultSet) Int32(col int) (int32, error) {
	return read(r, "Int32", func() (int32, error) { return r.cursor.Int32(col) })
}

func (r *ResultSet) Int16(col int) (int16, error) {
	return read(r, "Int16", func() (int16, error) { return r.cursor.Int16(col) })
}

func (r *ResultSet) Bool(col int) (bool, error) {
	return read(r, "Bool", func() (bool, error) { return r.cursor.Bool(col) })
}

func (r *ResultSet) Float32(col int) (float32, error) {
	return read(r, "Float32", func() (float32, error) { return r.cursor.Float32(col) })
}

func (r *ResultSet) Float64(col int) (float64, error) {
	return read(r, "Float64", func() (float64, error) { return r.cursor.Float64(col) })
}

func (r *ResultSet) Timestamp(col int) (time.Time, error) {
	return read(r, "Timestamp", func() (time.Time, error) { return r.cursor.Timestamp(col) })
}

// String returns the whole fixed-stride slot of a text column, padding
// included. Use strings.TrimPadding to drop trailing pad bytes.
func (r *ResultSet) String(col int) (string, error) {
	return read(r, "String", func() (string, error) { return r.cursor.String(col) })
}

// Bytes returns a copy of the raw slot of any column.
func (r *ResultSet) Bytes(col int) ([]byte, error) {
	return read(r, "Bytes", func() ([]byte, error) { return r.cursor.Bytes(col) })
}

// Object decodes a field by its declared type.
func (r *ResultSet) Object(col int) (columnar.Value, error) {
	return read(r, "Object", func() (columnar.Value, error) { return r.cursor.Object(col) })
}

func (r *ResultSet) Int64ByName(name string) (int64, error) { return byName(r, name, r.Int64) }

func (r *ResultSet) Int32ByName(name string) (int32, error) { return byName(r, name, r.Int32) }

func (r *ResultSet) Int16ByName(name string) (int16, error) { return byName(r, name, r.Int16) }

func (r *ResultSet) BoolByName(name string) (bool, error) { return byName(r, name, r.Bool) }

func (r *ResultSet) Float32ByName(name string) (float32, error) { return byName(r, name, r.Float32) }

func (r *ResultSet) Float64ByName(name string) (float64, error) { return byName(r, name, r.Float64) }

func (r *ResultSet) TimestampByName(name string) (time.Time, error) {
	return byName(r, name, r.Timestamp)
}

func (r *ResultSet) StringByName(name string) (string, error) { return byName(r, name, r.String) }

func (r *ResultSet) BytesByName(name string) ([]byte, error) { return byName(r, name, r.Bytes) }

func (r *ResultSet) ObjectByName(name string) (columnar.Value, error) {
	return byName(r, name, r.Object)
}
