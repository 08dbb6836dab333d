// Package ingest turns the per-column wire buffers of a query result into a
// fully decoded columnar.Payload.
//
// Each column arrives as a triple: its declared (uncompressed) size, the
// number of bytes actually sent, and those bytes. A column whose two sizes
// agree was sent raw and is adopted as is. Any other column is decompressed
// into a buffer of exactly the declared size; if the codec produces a
// different length the whole result is rejected.
//
// Ingest is eager and all-or-nothing: it either returns a payload in which
// every column is decoded, or an error and no payload.
package ingest

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/errors"
	"github.com/ajitpratap0/qflock/pkg/logger"
	"github.com/ajitpratap0/qflock/pkg/metrics"
)

const tracerName = "github.com/ajitpratap0/qflock/pkg/ingest"

// Input is everything the producer sends for one result.
//
// DeclaredBytes, WireBytes and Raw are parallel to Columns. Ownership of the
// Raw slices passes to the payload: uncompressed columns are adopted without
// copying, so callers must not modify them afterwards.
type Input struct {
	Columns       []columnar.ColumnDescriptor
	NumRows       int
	DeclaredBytes []int
	WireBytes     []int
	Raw           [][]byte
}

// LengthMismatchError is attached as the cause of a decode error when a
// column decompresses to a length other than its declared size.
type LengthMismatchError struct {
	Column       int
	Declared     int
	Decompressed int
}

func (e *LengthMismatchError) Error() string {
	if e.Decompressed > e.Declared {
		return fmt.Sprintf("column %d: decompressed to more than %d declared bytes", e.Column, e.Declared)
	}
	return fmt.Sprintf("column %d: decompressed to %d bytes, declared %d", e.Column, e.Decompressed, e.Declared)
}

type options struct {
	compressor     compression.Compressor
	logger         *zap.Logger
	metrics        *metrics.Collector
	maxColumnBytes int64
}

// Option configures Ingest.
type Option func(*options)

// WithCompressor sets the codec for compressed columns. The default is zstd.
func WithCompressor(c compression.Compressor) Option {
	return func(o *options) { o.compressor = c }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records ingest metrics on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// WithMaxColumnBytes rejects any column declaring more than n bytes before
// allocating for it. Zero disables the check.
func WithMaxColumnBytes(n int64) Option {
	return func(o *options) { o.maxColumnBytes = n }
}

// Ingest validates in and decodes every column, in declared order.
//
// The context carries tracing and logging fields only; ingest is not
// cancellable once started.
func Ingest(ctx context.Context, in Input, opts ...Option) (*columnar.Payload, []Diagnostic, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.compressor == nil {
		c, err := compression.NewCompressor(compression.DefaultConfig())
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create default decompressor")
		}
		o.compressor = c
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingest.Ingest",
		trace.WithAttributes(
			attribute.Int("qflock.columns", len(in.Columns)),
			attribute.Int("qflock.rows", in.NumRows),
			attribute.String("qflock.codec", string(o.compressor.Algorithm())),
		))
	defer span.End()

	log := logger.WithContext(ctx, o.logger)
	timer := metrics.NewTimer()

	payload, diags, err := ingest(in, &o, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest failed")
		if o.metrics != nil {
			o.metrics.IngestFailures.WithLabelValues(errorType(err)).Inc()
		}
		log.Warn("result payload rejected", zap.Error(err))
		return nil, nil, err
	}

	if o.metrics != nil {
		o.metrics.IngestDuration.Observe(timer.Stop().Seconds())
	}
	log.Debug("result payload decoded",
		zap.Int("columns", payload.NumColumns()),
		zap.Int("rows", payload.NumRows()),
		zap.Int64("bytes", payload.MemoryUsage()),
		zap.Int("diagnostics", len(diags)))

	return payload, diags, nil
}

func ingest(in Input, o *options, log *zap.Logger) (*columnar.Payload, []Diagnostic, error) {
	if err := validateShape(in); err != nil {
		return nil, nil, err
	}

	buffers := make([]*columnar.ColumnBuffer, len(in.Columns))
	var diags []Diagnostic

	for i, col := range in.Columns {
		declared, wire, raw := in.DeclaredBytes[i], in.WireBytes[i], in.Raw[i]

		if want := in.NumRows * col.Width; declared != want {
			return nil, nil, errors.Newf(errors.ErrorTypeDecode,
				"column %d (%s) declares %d bytes, want %d rows x %d bytes", i+1, col.Name, declared, in.NumRows, col.Width).
				WithDetail("column", i+1).
				WithDetail("declared_bytes", declared)
		}
		if o.maxColumnBytes > 0 && int64(declared) > o.maxColumnBytes {
			return nil, nil, errors.Newf(errors.ErrorTypeDecode,
				"column %d (%s) declares %d bytes, limit is %d", i+1, col.Name, declared, o.maxColumnBytes).
				WithDetail("column", i+1)
		}

		var (
			data []byte
			mode string
		)
		switch {
		case declared == 0:
			mode = metrics.ModeEmpty
			if wire != 0 {
				diags = append(diags, newDiagnostic(i+1, LevelWarning, declared, wire,
					"column declares no rows but carried %d wire bytes; ignored", wire))
			}
		case declared == wire:
			if len(raw) != wire {
				return nil, nil, errors.Newf(errors.ErrorTypeDecode,
					"column %d (%s) carries %d bytes, wire size is %d", i+1, col.Name, len(raw), wire).
					WithDetail("column", i+1)
			}
			mode = metrics.ModeRaw
			data = raw
		default:
			if len(raw) != wire {
				return nil, nil, errors.Newf(errors.ErrorTypeDecode,
					"column %d (%s) carries %d bytes, wire size is %d", i+1, col.Name, len(raw), wire).
					WithDetail("column", i+1)
			}
			decoded, err := decompressColumn(o.compressor, i+1, declared, raw)
			if err != nil {
				log.Info("column decompression failed",
					zap.Int("column", i+1),
					zap.Int("declared_bytes", declared),
					zap.Int("wire_bytes", wire),
					zap.Error(err))
				return nil, nil, err
			}
			mode = metrics.ModeCompressed
			data = decoded
			diags = append(diags, compressedDiagnostic(i+1, declared, wire))
		}

		buf, err := columnar.NewColumnBuffer(data, col.Width, in.NumRows)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeDecode, "malformed column buffer").
				WithDetail("column", i+1)
		}
		buffers[i] = buf

		log.Debug("column ingested",
			zap.Int("column", i+1),
			zap.String("name", col.Name),
			zap.String("mode", mode),
			zap.Int("declared_bytes", declared),
			zap.Int("wire_bytes", wire))

		if o.metrics != nil {
			o.metrics.ColumnsIngested.WithLabelValues(mode).Inc()
			o.metrics.BytesIngested.WithLabelValues("wire").Add(float64(wire))
			o.metrics.BytesIngested.WithLabelValues("declared").Add(float64(declared))
		}
	}

	payload, err := columnar.NewPayload(in.Columns, buffers, in.NumRows)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeDecode, "inconsistent result payload")
	}
	return payload, diags, nil
}

// decompressColumn rebuilds one column into a fresh buffer of exactly
// declared bytes.
func decompressColumn(c compression.Compressor, column, declared int, raw []byte) ([]byte, error) {
	dst := make([]byte, declared)

	n, err := c.DecompressInto(dst, raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "column decompression failed").
			WithDetail("column", column).
			WithDetail("codec", string(c.Algorithm()))
	}
	if n != declared {
		return nil, errors.Wrap(&LengthMismatchError{Column: column, Declared: declared, Decompressed: n},
			errors.ErrorTypeDecode, "decompressed bytes do not match").
			WithDetail("column", column).
			WithDetail("declared_bytes", declared).
			WithDetail("decompressed_bytes", n)
	}
	return dst, nil
}

func validateShape(in Input) error {
	n := len(in.Columns)
	if in.NumRows < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "row count cannot be negative, got %d", in.NumRows)
	}
	if len(in.DeclaredBytes) != n || len(in.WireBytes) != n || len(in.Raw) != n {
		return errors.Newf(errors.ErrorTypeValidation,
			"column triples do not match column count %d: declared=%d wire=%d raw=%d",
			n, len(in.DeclaredBytes), len(in.WireBytes), len(in.Raw))
	}
	for i, col := range in.Columns {
		if col.Index != i {
			return errors.Newf(errors.ErrorTypeValidation, "column %d (%s) has index %d", i+1, col.Name, col.Index)
		}
		if err := col.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeValidation, "invalid column descriptor")
		}
		if in.NumRows > math.MaxInt/col.Width {
			return errors.Newf(errors.ErrorTypeValidation,
				"column %d (%s): %d rows x %d bytes overflows the addressable size", i+1, col.Name, in.NumRows, col.Width).
				WithDetail("column", i+1)
		}
		if in.DeclaredBytes[i] < 0 || in.WireBytes[i] < 0 {
			return errors.Newf(errors.ErrorTypeValidation, "column %d (%s) has a negative byte count", i+1, col.Name)
		}
	}
	return nil
}

func errorType(err error) string {
	for _, t := range []errors.ErrorType{errors.ErrorTypeDecode, errors.ErrorTypeValidation} {
		if errors.IsType(err, t) {
			return string(t)
		}
	}
	return string(errors.ErrorTypeInternal)
}
