// Package metadata recovers per-column metadata that the MySQL driver keeps
// behind unexported members: the column flags, the originating table and
// the declared length.
package metadata

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/go-data-exporter/myresult/accessor"
)

// MySQL field types carrying character data.
const (
	fieldTypeVarChar   = 0x0f
	fieldTypeVarString = 0xfd
	fieldTypeString    = 0xfe
)

// Descriptor is the raw content of one driver column descriptor.
type Descriptor struct {
	TableName string
	Flags     ColumnFlags
	Length    uint32
	FieldType uint8
	CharSet   uint8
}

// IsText reports whether the column carries character data, whose length
// the server reports in bytes rather than characters.
func (d Descriptor) IsText() bool {
	switch d.FieldType {
	case fieldTypeVarChar, fieldTypeVarString, fieldTypeString:
	default:
		return false
	}
	if d.CharSet == binaryCharset {
		return false
	}
	return d.Flags&(Enum|Set) == 0
}

// Column is the metadata exposed for one column of a result.
type Column struct {
	TableName   string
	Flags       ColumnFlags
	DisplaySize int
}

// Extractor reads column descriptors out of a live row source.
type Extractor struct {
	cache  *accessor.Cache
	layout Layout
	width  func(uint8) int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLayout replaces MySQLLayout.
func WithLayout(layout Layout) Option {
	return func(e *Extractor) {
		e.layout = layout
	}
}

// WithCharsetWidth replaces CharsetWidth as the source of the maximum bytes
// per character of a collation id.
func WithCharsetWidth(fn func(id uint8) int) Option {
	return func(e *Extractor) {
		e.width = fn
	}
}

// NewExtractor returns an Extractor resolving members through cache.
func NewExtractor(cache *accessor.Cache, opts ...Option) *Extractor {
	e := &Extractor{
		cache:  cache,
		layout: MySQLLayout,
		width:  CharsetWidth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// columns resolves the result set of source and the accessor over its
// column descriptors.
func (e *Extractor) columns(source any) (accessor.Ref, *accessor.Index, error) {
	root, err := accessor.Of(source)
	if err != nil {
		return accessor.Ref{}, nil, err
	}
	drv, err := accessor.NestedOf(e.cache, root.Type(), e.layout.Driver)
	if err != nil {
		return accessor.Ref{}, nil, err
	}
	rows, err := drv.Get(root)
	if err != nil {
		return accessor.Ref{}, nil, err
	}
	rs, err := accessor.NestedOf(e.cache, rows.Type(), e.layout.ResultSet)
	if err != nil {
		return accessor.Ref{}, nil, err
	}
	set, err := rs.Get(rows)
	if err != nil {
		return accessor.Ref{}, nil, err
	}
	cols, err := accessor.IndexOf(e.cache, set.Type(), e.layout.Columns)
	if err != nil {
		return accessor.Ref{}, nil, err
	}
	return set, cols, nil
}

func (e *Extractor) column(source any, i int) (accessor.Ref, error) {
	set, cols, err := e.columns(source)
	if err != nil {
		return accessor.Ref{}, err
	}
	col, err := cols.Get(set, i)
	if err != nil {
		return accessor.Ref{}, errors.Wrapf(err, "column %d", i)
	}
	return col, nil
}

// Count returns the number of column descriptors of source.
func (e *Extractor) Count(source any) (int, error) {
	set, cols, err := e.columns(source)
	if err != nil {
		return 0, err
	}
	return cols.Len(set)
}

// Flags returns the flags of column i.
func (e *Extractor) Flags(source any, i int) (ColumnFlags, error) {
	col, err := e.column(source, i)
	if err != nil {
		return 0, err
	}
	return e.flags(col)
}

// TableName returns the table column i was selected from, before aliasing.
func (e *Extractor) TableName(source any, i int) (string, error) {
	col, err := e.column(source, i)
	if err != nil {
		return "", err
	}
	f, err := accessor.FieldOf[string](e.cache, col.Type(), e.layout.TableName)
	if err != nil {
		return "", err
	}
	return f.Get(col)
}

// ColumnSize returns the display size of column i: its declared length,
// converted from bytes to characters for text columns.
func (e *Extractor) ColumnSize(source any, i int) (int, error) {
	d, err := e.Describe(source, i)
	if err != nil {
		return 0, err
	}
	return e.size(d), nil
}

// Extract returns the metadata of column i.
func (e *Extractor) Extract(source any, i int) (Column, error) {
	d, err := e.Describe(source, i)
	if err != nil {
		return Column{}, err
	}
	return Column{
		TableName:   d.TableName,
		Flags:       d.Flags,
		DisplaySize: e.size(d),
	}, nil
}

// Describe returns the raw descriptor of column i.
func (e *Extractor) Describe(source any, i int) (Descriptor, error) {
	col, err := e.column(source, i)
	if err != nil {
		return Descriptor{}, err
	}
	return e.describe(col)
}

// SelfCheck resolves every member of the layout against source without
// reading any column, so a layout mismatch surfaces before the first row.
func (e *Extractor) SelfCheck(source any) error {
	_, cols, err := e.columns(source)
	if err != nil {
		return err
	}
	return e.build(cols.Elem())
}

func (e *Extractor) build(owner reflect.Type) error {
	if _, err := accessor.FieldOf[uint16](e.cache, owner, e.layout.Flags); err != nil {
		return err
	}
	if _, err := accessor.FieldOf[string](e.cache, owner, e.layout.TableName); err != nil {
		return err
	}
	if _, err := accessor.FieldOf[uint32](e.cache, owner, e.layout.Length); err != nil {
		return err
	}
	if _, err := accessor.FieldOf[uint8](e.cache, owner, e.layout.FieldType); err != nil {
		return err
	}
	_, err := accessor.FieldOf[uint8](e.cache, owner, e.layout.CharSet)
	return err
}

func (e *Extractor) flags(col accessor.Ref) (ColumnFlags, error) {
	f, err := accessor.FieldOf[uint16](e.cache, col.Type(), e.layout.Flags)
	if err != nil {
		return 0, err
	}
	v, err := f.Get(col)
	return ColumnFlags(v), err
}

func (e *Extractor) describe(col accessor.Ref) (Descriptor, error) {
	var (
		d   Descriptor
		err error
	)
	if d.Flags, err = e.flags(col); err != nil {
		return Descriptor{}, err
	}
	table, err := accessor.FieldOf[string](e.cache, col.Type(), e.layout.TableName)
	if err != nil {
		return Descriptor{}, err
	}
	if d.TableName, err = table.Get(col); err != nil {
		return Descriptor{}, err
	}
	length, err := accessor.FieldOf[uint32](e.cache, col.Type(), e.layout.Length)
	if err != nil {
		return Descriptor{}, err
	}
	if d.Length, err = length.Get(col); err != nil {
		return Descriptor{}, err
	}
	fieldType, err := accessor.FieldOf[uint8](e.cache, col.Type(), e.layout.FieldType)
	if err != nil {
		return Descriptor{}, err
	}
	if d.FieldType, err = fieldType.Get(col); err != nil {
		return Descriptor{}, err
	}
	charSet, err := accessor.FieldOf[uint8](e.cache, col.Type(), e.layout.CharSet)
	if err != nil {
		return Descriptor{}, err
	}
	if d.CharSet, err = charSet.Get(col); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func (e *Extractor) size(d Descriptor) int {
	if !d.IsText() {
		return int(d.Length)
	}
	width := e.width(d.CharSet)
	if width < 1 {
		width = 1
	}
	return int(d.Length) / width
}
