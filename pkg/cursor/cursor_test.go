package cursor

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/errors"
)

type testColumn struct {
	name  string
	typ   columnar.ColumnType
	width int
	data  []byte
}

func newTestCursor(t *testing.T, numRows int, cols ...testColumn) *Cursor {
	t.Helper()
	descs := make([]columnar.ColumnDescriptor, len(cols))
	bufs := make([]*columnar.ColumnBuffer, len(cols))
	for i, c := range cols {
		descs[i] = columnar.ColumnDescriptor{Index: i, Name: c.name, Type: c.typ, Width: c.width}
		buf, err := columnar.NewColumnBuffer(c.data, c.width, numRows)
		require.NoError(t, err)
		bufs[i] = buf
	}
	p, err := columnar.NewPayload(descs, bufs, numRows)
	require.NoError(t, err)
	return New(p)
}

func int64Col(name string, values ...int64) testColumn {
	b := make([]byte, 8*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint64(b[i*8:], uint64(v))
	}
	return testColumn{name: name, typ: columnar.ColumnTypeInt64, width: 8, data: b}
}

func TestNavigationForward(t *testing.T) {
	c := newTestCursor(t, 3, int64Col("id", 1, 2, 3))

	assert.True(t, c.IsBeforeFirst())
	assert.True(t, c.Next())
	assert.True(t, c.IsFirst())
	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.True(t, c.IsLast())
	assert.False(t, c.Next())
	assert.True(t, c.IsAfterLast())

	// stays past the end
	assert.False(t, c.Next())
	assert.False(t, c.Next())
	assert.True(t, c.IsAfterLast())
	assert.Equal(t, 4, c.Row())

	assert.True(t, c.Previous())
	assert.Equal(t, 3, c.Row())
}

func TestNavigationBackward(t *testing.T) {
	c := newTestCursor(t, 3, int64Col("id", 1, 2, 3))

	require.True(t, c.First())
	assert.False(t, c.Previous())
	assert.True(t, c.IsBeforeFirst())
	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.Row())

	_, err := c.Int64(1)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestFirstLast(t *testing.T) {
	c := newTestCursor(t, 3, int64Col("id", 10, 20, 30))

	assert.True(t, c.Last())
	v, err := c.Int64(1)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v)

	assert.True(t, c.First())
	v, err = c.Int64(1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)
}

func TestAbsoluteRelative(t *testing.T) {
	c := newTestCursor(t, 3, int64Col("id", 10, 20, 30))

	tests := []struct {
		name  string
		move  func() bool
		row   int
		onRow bool
	}{
		{"absolute 2", func() bool { return c.Absolute(2) }, 2, true},
		{"absolute -1", func() bool { return c.Absolute(-1) }, 3, true},
		{"absolute -3", func() bool { return c.Absolute(-3) }, 1, true},
		{"absolute -10", func() bool { return c.Absolute(-10) }, 0, false},
		{"absolute 0", func() bool { return c.Absolute(0) }, 0, false},
		{"absolute 99", func() bool { return c.Absolute(99) }, 4, false},
		{"relative -2", func() bool { return c.Relative(-2) }, 2, true},
		{"relative +1", func() bool { return c.Relative(1) }, 3, true},
		{"relative -50", func() bool { return c.Relative(-50) }, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.onRow, tt.move())
			assert.Equal(t, tt.row, c.Row())
		})
	}

	c.AfterLast()
	assert.True(t, c.IsAfterLast())
	c.BeforeFirst()
	assert.True(t, c.IsBeforeFirst())
}

func TestEmptyResult(t *testing.T) {
	c := newTestCursor(t, 0, testColumn{name: "id", typ: columnar.ColumnTypeInt64, width: 8})

	assert.False(t, c.Next())
	assert.True(t, c.IsAfterLast())
	assert.True(t, c.First())

	_, err := c.Int64(1)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestInt32BigEndian(t *testing.T) {
	c := newTestCursor(t, 2, testColumn{
		name: "n", typ: columnar.ColumnTypeInt32, width: 4,
		data: []byte{0, 0, 0, 5, 0, 0, 0, 9},
	})

	require.True(t, c.Next())
	v, err := c.Int32(1)
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)

	require.True(t, c.Next())
	v, err = c.Int32(1)
	require.NoError(t, err)
	assert.Equal(t, int32(9), v)
}

func TestTextPaddingPreserved(t *testing.T) {
	c := newTestCursor(t, 2, testColumn{
		name: "s", typ: columnar.ColumnTypeText, width: 4,
		data: []byte("abcdef  "),
	})

	require.True(t, c.Next())
	s, err := c.String(1)
	require.NoError(t, err)
	assert.Equal(t, "abcd", s)

	require.True(t, c.Next())
	s, err = c.String(1)
	require.NoError(t, err)
	assert.Equal(t, "ef  ", s)
}

func TestTextInvalidUTF8(t *testing.T) {
	c := newTestCursor(t, 1, testColumn{
		name: "s", typ: columnar.ColumnTypeText, width: 2,
		data: []byte{0xff, 0xfe},
	})
	require.True(t, c.Next())

	_, err := c.String(1)
	assert.True(t, errors.IsDecode(err))
}

func TestTypedGetters(t *testing.T) {
	i16 := make([]byte, 2)
	binary.BigEndian.PutUint16(i16, uint16(0xfffe)) // -2
	f32 := make([]byte, 4)
	binary.BigEndian.PutUint32(f32, math.Float32bits(1.5))
	f64 := make([]byte, 8)
	binary.BigEndian.PutUint64(f64, math.Float64bits(-2.25))
	ts := time.Date(2024, 3, 1, 12, 30, 0, 123000, time.UTC)
	tsb := make([]byte, 8)
	binary.BigEndian.PutUint64(tsb, uint64(ts.UnixMicro()))

	c := newTestCursor(t, 1,
		int64Col("big", -7),
		testColumn{name: "small", typ: columnar.ColumnTypeInt16, width: 2, data: i16},
		testColumn{name: "flag", typ: columnar.ColumnTypeBool, width: 1, data: []byte{2}},
		testColumn{name: "f", typ: columnar.ColumnTypeFloat32, width: 4, data: f32},
		testColumn{name: "d", typ: columnar.ColumnTypeFloat64, width: 8, data: f64},
		testColumn{name: "at", typ: columnar.ColumnTypeTimestamp, width: 8, data: tsb},
	)
	require.True(t, c.Next())

	big, err := c.Int64(1)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), big)

	small, err := c.Int16(2)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), small)

	flag, err := c.Bool(3)
	require.NoError(t, err)
	assert.True(t, flag)

	f, err := c.Float32(4)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	d, err := c.Float64(5)
	require.NoError(t, err)
	assert.Equal(t, -2.25, d)

	at, err := c.Timestamp(6)
	require.NoError(t, err)
	assert.True(t, ts.Equal(at))
	assert.Equal(t, time.UTC, at.Location())

	raw, err := c.Bytes(4)
	require.NoError(t, err)
	assert.Equal(t, f32, raw)
	raw[0] = 0
	again, err := c.Bytes(4)
	require.NoError(t, err)
	assert.Equal(t, f32, again)
}

func TestGettersAtExplicitRow(t *testing.T) {
	c := newTestCursor(t, 3, int64Col("id", 10, 20, 30))

	v, err := c.Int64At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)
	assert.Equal(t, 0, c.Row())

	_, err = c.Int64At(1, 4)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestOutOfRangeColumn(t *testing.T) {
	c := newTestCursor(t, 1, int64Col("id", 1))
	require.True(t, c.Next())

	for _, col := range []int{0, -1, 2} {
		_, err := c.Int64(col)
		assert.True(t, errors.IsOutOfRange(err), "column %d", col)
		_, err = c.Object(col)
		assert.True(t, errors.IsOutOfRange(err), "column %d", col)
	}

	_, err := c.Column(2)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestTypeMismatch(t *testing.T) {
	c := newTestCursor(t, 1, int64Col("id", 1))
	require.True(t, c.Next())

	_, err := c.Int32(1)
	assert.True(t, errors.IsTypeMismatch(err))
	_, err = c.String(1)
	assert.True(t, errors.IsTypeMismatch(err))
	_, err = c.Float64(1)
	assert.True(t, errors.IsTypeMismatch(err))
}

func TestObjectDispatch(t *testing.T) {
	c := newTestCursor(t, 1,
		int64Col("id", 42),
		testColumn{name: "s", typ: columnar.ColumnTypeText, width: 3, data: []byte("abc")},
		testColumn{name: "n", typ: columnar.ColumnTypeInt32, width: 4, data: []byte{0, 0, 1, 0}},
		testColumn{name: "arr", typ: columnar.ColumnTypeArray, width: 4, data: []byte{1, 2, 3, 4}},
		testColumn{name: "blob", typ: columnar.ColumnTypeLOB, width: 2, data: []byte{9, 9}},
	)
	require.True(t, c.Next())

	v, err := c.Object(1)
	require.NoError(t, err)
	assert.Equal(t, columnar.Int64Value(42), v)
	assert.Equal(t, columnar.ColumnTypeInt64, v.Type())

	v, err = c.Object(2)
	require.NoError(t, err)
	assert.Equal(t, "abc", v.Any())

	v, err = c.Object(3)
	require.NoError(t, err)
	assert.Equal(t, int32(256), v.Any())

	_, err = c.Object(4)
	assert.True(t, errors.IsUnsupportedType(err))
	_, err = c.Object(5)
	assert.True(t, errors.IsUnsupportedType(err))

	raw, err := c.Bytes(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, raw)
}

func TestObjectBeforeFirstIsOutOfRange(t *testing.T) {
	c := newTestCursor(t, 1, testColumn{name: "arr", typ: columnar.ColumnTypeArray, width: 1, data: []byte{1}})

	_, err := c.Object(1)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestObjectErrorsCarryNoValue(t *testing.T) {
	cols := []testColumn{
		int64Col("i64", 1),
		{name: "i32", typ: columnar.ColumnTypeInt32, width: 4, data: []byte{0, 0, 0, 1}},
		{name: "i16", typ: columnar.ColumnTypeInt16, width: 2, data: []byte{0, 1}},
		{name: "b", typ: columnar.ColumnTypeBool, width: 1, data: []byte{1}},
		{name: "f32", typ: columnar.ColumnTypeFloat32, width: 4, data: []byte{0, 0, 0, 0}},
		{name: "f64", typ: columnar.ColumnTypeFloat64, width: 8, data: make([]byte, 8)},
		{name: "s", typ: columnar.ColumnTypeText, width: 2, data: []byte("ab")},
		{name: "ts", typ: columnar.ColumnTypeTimestamp, width: 8, data: make([]byte, 8)},
		{name: "blob", typ: columnar.ColumnTypeLOB, width: 1, data: []byte{7}},
	}
	c := newTestCursor(t, 1, cols...)

	for col := 1; col <= len(cols); col++ {
		for _, row := range []int{0, 2} {
			v, err := c.ObjectAt(col, row)
			require.Error(t, err, "column %d row %d", col, row)
			assert.Nil(t, v, "column %d row %d", col, row)
		}
	}

	v, err := c.ObjectAt(len(cols), 1)
	assert.True(t, errors.IsUnsupportedType(err))
	assert.Nil(t, v)
}

func TestGettersDoNotMove(t *testing.T) {
	c := newTestCursor(t, 2, int64Col("id", 1, 2))
	require.True(t, c.Next())

	for i := 0; i < 3; i++ {
		_, err := c.Int64(1)
		require.NoError(t, err)
		_, err = c.Object(1)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Row())
}

func BenchmarkInt64Scan(b *testing.B) {
	const rows = 4096
	data := make([]byte, 8*rows)
	for i := 0; i < rows; i++ {
		binary.BigEndian.PutUint64(data[i*8:], uint64(i))
	}
	buf, _ := columnar.NewColumnBuffer(data, 8, rows)
	p, _ := columnar.NewPayload([]columnar.ColumnDescriptor{{Name: "id", Type: columnar.ColumnTypeInt64, Width: 8}},
		[]*columnar.ColumnBuffer{buf}, rows)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := New(p)
		var sum int64
		for c.Next() {
			v, _ := c.Int64(1)
			sum += v
		}
	}
}
