package ingest

import (
	"context"
	"encoding/binary"
	stderrors "errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/errors"
	"github.com/ajitpratap0/qflock/pkg/metrics"
)

// countingCompressor records how often the ingest path decompresses.
type countingCompressor struct {
	compression.Compressor
	calls int
}

func (c *countingCompressor) DecompressInto(dst, src []byte) (int, error) {
	c.calls++
	return c.Compressor.DecompressInto(dst, src)
}

func newCounting(t *testing.T) *countingCompressor {
	t.Helper()
	comp, err := compression.NewCompressor(compression.DefaultConfig())
	require.NoError(t, err)
	return &countingCompressor{Compressor: comp}
}

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	comp, err := compression.NewCompressor(compression.DefaultConfig())
	require.NoError(t, err)
	out, err := comp.Compress(data)
	require.NoError(t, err)
	return out
}

func int64Column(values ...int64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return buf
}

func testOptions(c compression.Compressor) []Option {
	return []Option{WithCompressor(c), WithLogger(zap.NewNop())}
}

func TestIngestRawColumnsAdoptedVerbatim(t *testing.T) {
	comp := newCounting(t)
	ints := []byte{0, 0, 0, 5, 0, 0, 0, 9}
	text := []byte("abcdef  ")

	in := Input{
		Columns: []columnar.ColumnDescriptor{
			{Index: 0, Name: "n", Type: columnar.ColumnTypeInt32, Width: 4},
			{Index: 1, Name: "s", Type: columnar.ColumnTypeText, Width: 4},
		},
		NumRows:       2,
		DeclaredBytes: []int{8, 8},
		WireBytes:     []int{8, 8},
		Raw:           [][]byte{ints, text},
	}

	payload, diags, err := Ingest(context.Background(), in, testOptions(comp)...)
	require.NoError(t, err)

	assert.Equal(t, 0, comp.calls, "raw columns must not be decompressed")
	assert.Empty(t, diags)
	assert.Equal(t, ints, payload.Buffer(0).Bytes())
	assert.Equal(t, text, payload.Buffer(1).Bytes())
	assert.Equal(t, 2, payload.NumRows())
}

func TestIngestCompressedRoundTrip(t *testing.T) {
	comp := newCounting(t)

	values := make([]int64, 512)
	for i := range values {
		values[i] = int64(i % 7)
	}
	original := int64Column(values...)
	compressed := zstdCompress(t, original)
	require.NotEqual(t, len(original), len(compressed))

	in := Input{
		Columns:       []columnar.ColumnDescriptor{{Index: 0, Name: "k", Type: columnar.ColumnTypeInt64, Width: 8}},
		NumRows:       len(values),
		DeclaredBytes: []int{len(original)},
		WireBytes:     []int{len(compressed)},
		Raw:           [][]byte{compressed},
	}

	payload, diags, err := Ingest(context.Background(), in, testOptions(comp)...)
	require.NoError(t, err)

	assert.Equal(t, 1, comp.calls)
	assert.Equal(t, original, payload.Buffer(0).Bytes())

	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Column)
	assert.Equal(t, LevelInfo, diags[0].Level)
	assert.Equal(t, len(compressed), diags[0].WireBytes)
}

func TestIngestMixedColumnsKeepOrder(t *testing.T) {
	comp := newCounting(t)

	text := []byte("alpha   beta    gamma   ")
	compressedText := zstdCompress(t, text)
	ints := int64Column(10, 20, 30)

	in := Input{
		Columns: []columnar.ColumnDescriptor{
			{Index: 0, Name: "id", Type: columnar.ColumnTypeInt64, Width: 8},
			{Index: 1, Name: "name", Type: columnar.ColumnTypeText, Width: 8},
		},
		NumRows:       3,
		DeclaredBytes: []int{24, 24},
		WireBytes:     []int{24, len(compressedText)},
		Raw:           [][]byte{ints, compressedText},
	}

	payload, diags, err := Ingest(context.Background(), in, testOptions(comp)...)
	require.NoError(t, err)

	assert.Equal(t, 1, comp.calls)
	assert.Equal(t, ints, payload.Buffer(0).Bytes())

	slot, err := payload.Buffer(1).Slot(2)
	require.NoError(t, err)
	assert.Equal(t, "gamma   ", string(slot))

	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Column)
}

func TestIngestLengthMismatch(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"short output", int64Column(1, 2)},
		{"long output", int64Column(1, 2, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := zstdCompress(t, tt.content)
			in := Input{
				Columns:       []columnar.ColumnDescriptor{{Index: 0, Name: "k", Type: columnar.ColumnTypeInt64, Width: 8}},
				NumRows:       3,
				DeclaredBytes: []int{24},
				WireBytes:     []int{len(compressed)},
				Raw:           [][]byte{compressed},
			}

			payload, diags, err := Ingest(context.Background(), in, testOptions(newCounting(t))...)
			require.Error(t, err)
			assert.Nil(t, payload)
			assert.Nil(t, diags)
			assert.True(t, errors.IsDecode(err))

			var mismatch *LengthMismatchError
			require.True(t, stderrors.As(err, &mismatch))
			assert.Equal(t, 24, mismatch.Declared)
			assert.NotEqual(t, 24, mismatch.Decompressed)
		})
	}
}

func TestIngestCorruptCompressedColumn(t *testing.T) {
	in := Input{
		Columns:       []columnar.ColumnDescriptor{{Index: 0, Name: "k", Type: columnar.ColumnTypeInt64, Width: 8}},
		NumRows:       2,
		DeclaredBytes: []int{16},
		WireBytes:     []int{5},
		Raw:           [][]byte{{1, 2, 3, 4, 5}},
	}

	_, _, err := Ingest(context.Background(), in, testOptions(newCounting(t))...)
	require.Error(t, err)
	assert.True(t, errors.IsDecode(err))

	var structured *errors.Error
	require.True(t, stderrors.As(err, &structured))
	assert.NotNil(t, structured.Cause)
	assert.Equal(t, 1, structured.Details["column"])
}

func TestIngestIsAtomic(t *testing.T) {
	good := int64Column(1, 2)
	bad := zstdCompress(t, int64Column(7))

	in := Input{
		Columns: []columnar.ColumnDescriptor{
			{Index: 0, Name: "a", Type: columnar.ColumnTypeInt64, Width: 8},
			{Index: 1, Name: "b", Type: columnar.ColumnTypeInt64, Width: 8},
		},
		NumRows:       2,
		DeclaredBytes: []int{16, 16},
		WireBytes:     []int{16, len(bad)},
		Raw:           [][]byte{good, bad},
	}

	payload, diags, err := Ingest(context.Background(), in, testOptions(newCounting(t))...)
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.Nil(t, diags)
}

func TestIngestZeroRows(t *testing.T) {
	comp := newCounting(t)
	in := Input{
		Columns: []columnar.ColumnDescriptor{
			{Index: 0, Name: "a", Type: columnar.ColumnTypeInt32, Width: 4},
			{Index: 1, Name: "b", Type: columnar.ColumnTypeText, Width: 16},
		},
		NumRows:       0,
		DeclaredBytes: []int{0, 0},
		WireBytes:     []int{0, 9},
		Raw:           [][]byte{nil, []byte("leftovers")},
	}

	payload, diags, err := Ingest(context.Background(), in, testOptions(comp)...)
	require.NoError(t, err)

	assert.Equal(t, 0, comp.calls)
	assert.Equal(t, 0, payload.NumRows())
	assert.Equal(t, 0, payload.Buffer(0).Len())
	assert.Equal(t, 0, payload.Buffer(1).Len())

	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Column)
	assert.Equal(t, LevelWarning, diags[0].Level)
}

func TestIngestValidation(t *testing.T) {
	base := func() Input {
		return Input{
			Columns:       []columnar.ColumnDescriptor{{Index: 0, Name: "a", Type: columnar.ColumnTypeInt32, Width: 4}},
			NumRows:       1,
			DeclaredBytes: []int{4},
			WireBytes:     []int{4},
			Raw:           [][]byte{{0, 0, 0, 1}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Input)
		errType errors.ErrorType
	}{
		{"negative rows", func(in *Input) { in.NumRows = -1 }, errors.ErrorTypeValidation},
		{"missing triple", func(in *Input) { in.WireBytes = nil }, errors.ErrorTypeValidation},
		{"bad index", func(in *Input) { in.Columns[0].Index = 3 }, errors.ErrorTypeValidation},
		{"bad width", func(in *Input) { in.Columns[0].Width = 8 }, errors.ErrorTypeValidation},
		{"negative size", func(in *Input) { in.WireBytes[0] = -4 }, errors.ErrorTypeValidation},
		{"declared disagrees with rows", func(in *Input) {
			in.DeclaredBytes[0] = 8
			in.WireBytes[0] = 8
		}, errors.ErrorTypeDecode},
		{"row count overflows width", func(in *Input) {
			in.NumRows = 1 << 62
			in.DeclaredBytes[0] = 0
			in.WireBytes[0] = 0
			in.Raw[0] = nil
		}, errors.ErrorTypeValidation},
		{"row count at the overflow boundary", func(in *Input) {
			in.NumRows = math.MaxInt/4 + 1
		}, errors.ErrorTypeValidation},
		{"large row count with small width", func(in *Input) {
			in.NumRows = math.MaxInt / 4
		}, errors.ErrorTypeDecode},
		{"raw shorter than wire", func(in *Input) { in.Raw[0] = []byte{0, 0} }, errors.ErrorTypeDecode},
		{"compressed raw shorter than wire", func(in *Input) {
			in.WireBytes[0] = 3
			in.Raw[0] = []byte{1}
		}, errors.ErrorTypeDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)

			payload, _, err := Ingest(context.Background(), in, testOptions(newCounting(t))...)
			require.Error(t, err)
			assert.Nil(t, payload)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestIngestMaxColumnBytes(t *testing.T) {
	comp := newCounting(t)
	in := Input{
		Columns:       []columnar.ColumnDescriptor{{Index: 0, Name: "k", Type: columnar.ColumnTypeInt64, Width: 8}},
		NumRows:       4,
		DeclaredBytes: []int{32},
		WireBytes:     []int{3},
		Raw:           [][]byte{{1, 2, 3}},
	}

	opts := append(testOptions(comp), WithMaxColumnBytes(16))
	_, _, err := Ingest(context.Background(), in, opts...)
	require.Error(t, err)
	assert.True(t, errors.IsDecode(err))
	assert.Equal(t, 0, comp.calls, "limit is enforced before decompressing")
}

func TestIngestRecordsMetrics(t *testing.T) {
	m := metrics.NewCollector(prometheus.NewRegistry())

	original := int64Column(1, 1, 1, 1, 1, 1, 1, 1)
	compressed := zstdCompress(t, original)

	in := Input{
		Columns: []columnar.ColumnDescriptor{
			{Index: 0, Name: "a", Type: columnar.ColumnTypeInt64, Width: 8},
			{Index: 1, Name: "b", Type: columnar.ColumnTypeInt64, Width: 8},
		},
		NumRows:       8,
		DeclaredBytes: []int{64, 64},
		WireBytes:     []int{64, len(compressed)},
		Raw:           [][]byte{original, compressed},
	}

	opts := append(testOptions(newCounting(t)), WithMetrics(m))
	_, _, err := Ingest(context.Background(), in, opts...)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ColumnsIngested.WithLabelValues(metrics.ModeRaw)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ColumnsIngested.WithLabelValues(metrics.ModeCompressed)))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.BytesIngested.WithLabelValues("declared")))

	in.Raw[1] = []byte("garbage!")
	in.WireBytes[1] = 8
	_, _, err = Ingest(context.Background(), in, opts...)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("decode")))
}

func TestIngestDefaultsToZstd(t *testing.T) {
	original := int64Column(3, 1, 4, 1, 5, 9, 2, 6)
	compressed := zstdCompress(t, original)

	in := Input{
		Columns:       []columnar.ColumnDescriptor{{Index: 0, Name: "pi", Type: columnar.ColumnTypeInt64, Width: 8}},
		NumRows:       8,
		DeclaredBytes: []int{64},
		WireBytes:     []int{len(compressed)},
		Raw:           [][]byte{compressed},
	}

	payload, _, err := Ingest(context.Background(), in, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, original, payload.Buffer(0).Bytes())
}

func TestLengthMismatchErrorMessage(t *testing.T) {
	short := &LengthMismatchError{Column: 2, Declared: 24, Decompressed: 16}
	assert.Equal(t, "column 2: decompressed to 16 bytes, declared 24", short.Error())

	long := &LengthMismatchError{Column: 2, Declared: 24, Decompressed: 25}
	assert.Equal(t, "column 2: decompressed to more than 24 declared bytes", long.Error())
}

func TestDiagnosticString(t *testing.T) {
	d := compressedDiagnostic(3, 100, 120)
	assert.Equal(t, LevelWarning, d.Level)
	assert.Contains(t, d.String(), "[warning] column 3:")
}
