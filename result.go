package myresult

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/go-data-exporter/myresult/metadata"
	"github.com/go-data-exporter/myresult/scanner"
	"github.com/go-data-exporter/myresult/tostring"
	"github.com/go-data-exporter/myresult/typename"
)

// Result is a cursor over one result set. It owns the column metadata of
// the result, which is read once and kept for the lifetime of the Result,
// and a field cursor used by the per-field accessors.
//
// A Result is not safe for concurrent use.
type Result struct {
	rows       scanner.Rows
	m          *Materializer
	logger     *slog.Logger
	convert    bool
	columns    []scanner.Column
	typeNames  []string
	categories []typename.Category

	current []any
	err     error
	meta    []metadata.Column
	field   int
}

// Option configures a Result.
type Option func(*Result)

// WithLogger sets the logger. It defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Result) {
		r.logger = logger
	}
}

// WithRawValues turns value conversion off for Row, as Values does when
// called with convert unset.
func WithRawValues(raw bool) Option {
	return func(r *Result) {
		r.convert = !raw
	}
}

// New returns a Result reading rows through m.
func New(rows scanner.Rows, m *Materializer, opts ...Option) (*Result, error) {
	r := &Result{
		rows:    rows,
		m:       m,
		convert: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "myresult: columns")
	}
	r.columns = cols
	r.typeNames = make([]string, len(cols))
	for i, c := range cols {
		r.typeNames[i] = c.DatabaseTypeName()
	}
	r.categories = typename.MapAll(r.typeNames)
	return r, nil
}

// Columns returns the columns of the result.
func (r *Result) Columns() []scanner.Column {
	return r.columns
}

// TypeNames returns the declared type name of every column.
func (r *Result) TypeNames() []string {
	return r.typeNames
}

// FieldCount returns the number of columns.
func (r *Result) FieldCount() int {
	return len(r.columns)
}

// Driver returns the name of the driver behind the rows.
func (r *Result) Driver() string {
	return r.rows.Driver()
}

// Next advances to the next row. It returns false at the end of the
// result or on error; Err tells the two apart.
func (r *Result) Next() bool {
	r.current = nil
	if r.err != nil || !r.rows.Next() {
		return false
	}
	row, err := r.rows.ScanRow()
	if err != nil {
		r.err = errors.Wrap(err, "myresult: scan")
		return false
	}
	r.current = row
	return true
}

// Err returns the error that stopped Next, if any.
func (r *Result) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

// Close closes the underlying rows. Metadata read before Close stays
// available.
func (r *Result) Close() error {
	return r.rows.Close()
}

// Row returns the current row, converted unless WithRawValues was set.
func (r *Result) Row() ([]tostring.Value, error) {
	return r.Values(r.typeNames, r.convert)
}

// Values returns the current row. typeNames holds the declared type name
// of every column and selects the date layout; with convert unset only
// NULL, strings and byte sequences take their host shape.
func (r *Result) Values(typeNames []string, convert bool) ([]tostring.Value, error) {
	if r.current == nil {
		return nil, ErrNoRow
	}
	return r.m.Row(r.current, typeNames, convert)
}

// CheckFieldIndex reports whether i names a column of the result. A bad
// index is logged as a warning.
func (r *Result) CheckFieldIndex(i int) error {
	if i < 0 || i >= len(r.columns) {
		r.logger.Warn("invalid field index", "index", i, "field_count", len(r.columns))
		return errors.Wrapf(ErrInvalidFieldIndex, "field %d of %d", i, len(r.columns))
	}
	return nil
}

func (r *Result) source() (any, error) {
	src := r.rows.Source()
	if src == nil {
		return nil, errors.Wrapf(ErrNoSource, "driver %s", r.rows.Driver())
	}
	return src, nil
}

// ColumnSize returns the display size of column i in characters.
func (r *Result) ColumnSize(i int) (int, error) {
	if err := r.CheckFieldIndex(i); err != nil {
		return 0, err
	}
	src, err := r.source()
	if err != nil {
		return 0, err
	}
	return r.m.extractor.ColumnSize(src, i)
}

// FieldFlags returns the flags of column i.
func (r *Result) FieldFlags(i int) (metadata.ColumnFlags, error) {
	if err := r.CheckFieldIndex(i); err != nil {
		return 0, err
	}
	src, err := r.source()
	if err != nil {
		return 0, err
	}
	return r.m.extractor.Flags(src, i)
}

// RealTableName returns the table column i was selected from, ignoring
// aliases. It is empty for computed columns.
func (r *Result) RealTableName(i int) (string, error) {
	if err := r.CheckFieldIndex(i); err != nil {
		return "", err
	}
	src, err := r.source()
	if err != nil {
		return "", err
	}
	return r.m.extractor.TableName(src, i)
}

// CustomData returns the metadata of every column. It is read on the first
// call and returned unchanged afterwards.
func (r *Result) CustomData() ([]metadata.Column, error) {
	if r.meta != nil {
		return r.meta, nil
	}
	src, err := r.source()
	if err != nil {
		return nil, err
	}
	meta, err := r.m.Metadata(src, len(r.columns))
	if err != nil {
		return nil, err
	}
	r.logger.Debug("column metadata loaded", "driver", r.rows.Driver(), "columns", len(meta))
	r.meta = meta
	return meta, nil
}

// SelfCheck resolves the metadata layout against the rows without reading
// any column.
func (r *Result) SelfCheck() error {
	src, err := r.source()
	if err != nil {
		return err
	}
	return r.m.extractor.SelfCheck(src)
}

// FieldName returns the name of column i.
func (r *Result) FieldName(i int) (string, error) {
	if err := r.CheckFieldIndex(i); err != nil {
		return "", err
	}
	return r.columns[i].Name(), nil
}

// FieldType returns the host type category of column i.
func (r *Result) FieldType(i int) (typename.Category, error) {
	if err := r.CheckFieldIndex(i); err != nil {
		return "", err
	}
	return r.categories[i], nil
}

// IsNumericField reports whether column i holds numbers on the host.
func (r *Result) IsNumericField(i int) (bool, error) {
	c, err := r.FieldType(i)
	if err != nil {
		return false, err
	}
	return c.IsNumeric(), nil
}

// FieldSeek moves the field cursor to column i.
func (r *Result) FieldSeek(i int) error {
	if err := r.CheckFieldIndex(i); err != nil {
		return err
	}
	r.field = i
	return nil
}

// CurrentField returns the position of the field cursor.
func (r *Result) CurrentField() int {
	return r.field
}

// CurrentFieldFlags returns the flags of the column under the field cursor.
func (r *Result) CurrentFieldFlags() (metadata.ColumnFlags, error) {
	return r.FieldFlags(r.field)
}
