// Package resultset is the public face of a qflock query result.
//
// A ResultSet is built once from the wire buffers of a result, decoding every
// column up front, and then read through a scroll-insensitive, read-only
// cursor. Columns are addressed by 1-based index or by case-insensitive name.
// Notes produced while decoding are available from Warnings until cleared.
//
// After Close every method except Close returns a closed error.
//
// # Basic Usage
//
//	rs, err := resultset.New(ctx, in)
//	if err != nil {
//	    return err
//	}
//	defer rs.Close()
//
//	for {
//	    ok, err := rs.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    id, _ := rs.Int64ByName("id")
//	    name, _ := rs.String(2)
//	}
//
// A ResultSet is not safe for concurrent use.
package resultset

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/cursor"
	"github.com/ajitpratap0/qflock/pkg/errors"
	"github.com/ajitpratap0/qflock/pkg/ingest"
	"github.com/ajitpratap0/qflock/pkg/logger"
	"github.com/ajitpratap0/qflock/pkg/metrics"
	stringpool "github.com/ajitpratap0/qflock/pkg/strings"
)

// ScrollType describes how a result may be navigated.
type ScrollType int

const (
	TypeForwardOnly ScrollType = iota
	TypeScrollInsensitive
	TypeScrollSensitive
)

func (t ScrollType) String() string {
	switch t {
	case TypeForwardOnly:
		return "forward_only"
	case TypeScrollInsensitive:
		return "scroll_insensitive"
	case TypeScrollSensitive:
		return "scroll_sensitive"
	default:
		return "unknown"
	}
}

// Holdability describes whether a result survives a commit.
type Holdability int

const (
	HoldCursorsOverCommit Holdability = iota
	CloseCursorsAtCommit
)

func (h Holdability) String() string {
	if h == HoldCursorsOverCommit {
		return "hold_cursors_over_commit"
	}
	return "close_cursors_at_commit"
}

// Concurrency describes whether a result can be updated in place.
type Concurrency int

const (
	ConcurReadOnly Concurrency = iota
	ConcurUpdatable
)

func (c Concurrency) String() string {
	if c == ConcurReadOnly {
		return "read_only"
	}
	return "updatable"
}

// ResultSet is a decoded query result with a movable cursor.
type ResultSet struct {
	cursor   *cursor.Cursor
	meta     *Metadata
	names    map[string]int
	warnings []ingest.Diagnostic
	closed   bool

	log     *zap.Logger
	metrics *metrics.Collector
}

type options struct {
	logger     *zap.Logger
	metrics    *metrics.Collector
	ingestOpts []ingest.Option
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger used by the result and its ingest.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records ingest and access metrics on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// WithIngestOptions passes options through to ingest.Ingest, for example
// the codec or a column size limit.
func WithIngestOptions(opts ...ingest.Option) Option {
	return func(o *options) { o.ingestOpts = append(o.ingestOpts, opts...) }
}

// New decodes in and returns a result positioned before the first row.
// Nothing is returned if any column fails to decode.
func New(ctx context.Context, in ingest.Input, opts ...Option) (*ResultSet, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.WithContext(ctx, o.logger)

	ingestOpts := []ingest.Option{ingest.WithLogger(log)}
	if o.metrics != nil {
		ingestOpts = append(ingestOpts, ingest.WithMetrics(o.metrics))
	}
	ingestOpts = append(ingestOpts, o.ingestOpts...)

	payload, diags, err := ingest.Ingest(ctx, in, ingestOpts...)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{
		cursor:   cursor.New(payload),
		names:    make(map[string]int, payload.NumColumns()),
		warnings: diags,
		log:      log,
		metrics:  o.metrics,
	}
	rs.meta = newMetadata(payload.Columns(), rs)
	// the first column wins when names repeat
	for i, col := range payload.Columns() {
		key := stringpool.FoldName(col.Name)
		if _, ok := rs.names[key]; !ok {
			rs.names[key] = i + 1
		}
	}

	if rs.metrics != nil {
		rs.metrics.ResultsOpen.Inc()
	}
	log.Debug("result opened",
		zap.Int("columns", payload.NumColumns()),
		zap.Int("rows", payload.NumRows()),
		zap.Int("warnings", len(diags)))

	return rs, nil
}

// Close releases the decoded buffers. Closing twice is a no-op.
func (r *ResultSet) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.cursor = nil
	r.warnings = nil

	if r.metrics != nil {
		r.metrics.ResultsOpen.Dec()
	}
	r.log.Debug("result closed")
	return nil
}

// IsClosed reports whether Close has been called
func (r *ResultSet) IsClosed() bool { return r.closed }

// FindColumn returns the 1-based index of the first column whose name equals
// name, ignoring case.
func (r *ResultSet) FindColumn(name string) (int, error) {
	if err := r.checkOpen("FindColumn"); err != nil {
		return 0, err
	}
	col, ok := r.names[stringpool.FoldName(name)]
	if !ok {
		return 0, r.fail(errors.Newf(errors.ErrorTypeValidation, "no column named %q", name).
			WithDetail("name", name))
	}
	return col, nil
}

// Metadata describes the columns of the result.
func (r *ResultSet) Metadata() (*Metadata, error) {
	if err := r.checkOpen("Metadata"); err != nil {
		return nil, err
	}
	return r.meta, nil
}

// Warnings returns the diagnostics collected while decoding, in column order.
func (r *ResultSet) Warnings() ([]ingest.Diagnostic, error) {
	if err := r.checkOpen("Warnings"); err != nil {
		return nil, err
	}
	out := make([]ingest.Diagnostic, len(r.warnings))
	copy(out, r.warnings)
	return out, nil
}

// ClearWarnings drops all collected diagnostics.
func (r *ResultSet) ClearWarnings() error {
	if err := r.checkOpen("ClearWarnings"); err != nil {
		return err
	}
	r.warnings = nil
	return nil
}

// Type reports the scroll type, which is always TypeScrollInsensitive.
func (r *ResultSet) Type() (ScrollType, error) {
	if err := r.checkOpen("Type"); err != nil {
		return 0, err
	}
	return TypeScrollInsensitive, nil
}

// Holdability is always CloseCursorsAtCommit.
func (r *ResultSet) Holdability() (Holdability, error) {
	if err := r.checkOpen("Holdability"); err != nil {
		return 0, err
	}
	return CloseCursorsAtCommit, nil
}

// Concurrency is always ConcurReadOnly.
func (r *ResultSet) Concurrency() (Concurrency, error) {
	if err := r.checkOpen("Concurrency"); err != nil {
		return 0, err
	}
	return ConcurReadOnly, nil
}

func (r *ResultSet) checkOpen(op string) error {
	if r.closed {
		return r.fail(errors.Newf(errors.ErrorTypeClosed, "%s called on a closed result", op))
	}
	return nil
}

// fail counts err against the access error metric and returns it.
func (r *ResultSet) fail(err error) error {
	if r.metrics != nil {
		r.metrics.AccessErrors.WithLabelValues(errorLabel(err)).Inc()
	}
	return err
}

func errorLabel(err error) string {
	for _, t := range []errors.ErrorType{
		errors.ErrorTypeOutOfRange,
		errors.ErrorTypeTypeMismatch,
		errors.ErrorTypeUnsupportedType,
		errors.ErrorTypeDecode,
		errors.ErrorTypeClosed,
		errors.ErrorTypeValidation,
	} {
		if errors.IsType(err, t) {
			return string(t)
		}
	}
	return string(errors.ErrorTypeInternal)
}

// Column returns the descriptor of 1-based column col.
func (r *ResultSet) Column(col int) (columnar.ColumnDescriptor, error) {
	if err := r.checkOpen("Column"); err != nil {
		return columnar.ColumnDescriptor{}, err
	}
	d, err := r.cursor.Column(col)
	if err != nil {
		return d, r.fail(err)
	}
	return d, nil
}
