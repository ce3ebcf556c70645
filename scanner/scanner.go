// Package scanner defines the row sources the materializer reads from.
package scanner

import "github.com/go-data-exporter/myresult/tostring"

// Rows is a forward-only cursor over a result.
type Rows interface {
	Next() bool
	ScanRow() ([]any, error)
	Columns() ([]Column, error)
	Driver() string
	Err() error
	Close() error

	// Source returns the driver object column metadata is recovered from,
	// or nil when the rows are not backed by a driver.
	Source() any
}

// Metadata describes the cell handed to a codec's custom type mapper.
type Metadata struct {
	RowID  int
	Driver string
	Column Column
}

// ValueRows is a cursor over materialized rows, as consumed by the codecs.
type ValueRows interface {
	Next() bool
	Columns() []Column
	Row() ([]tostring.Value, error)
	Driver() string
	Err() error
}
