// Package myresult materializes rows of MySQL results into host values:
// every cell becomes NULL, text or a byte sequence, and every column
// exposes the flags, originating table and display size the driver keeps
// private.
package myresult

import (
	"github.com/pkg/errors"

	"github.com/go-data-exporter/myresult/metadata"
	"github.com/go-data-exporter/myresult/tostring"
	"github.com/go-data-exporter/myresult/typename"
)

// Materializer converts rows and reads column metadata. It keeps no
// per-result state and may be shared by any number of results.
type Materializer struct {
	extractor *metadata.Extractor
}

// NewMaterializer returns a Materializer reading metadata through extractor.
func NewMaterializer(extractor *metadata.Extractor) *Materializer {
	return &Materializer{extractor: extractor}
}

// Extractor returns the metadata extractor of m.
func (m *Materializer) Extractor() *metadata.Extractor {
	return m.extractor
}

// Row converts the raw values of one row. typeNames holds the declared
// type name of every column; names past the last value are ignored. With
// convert unset only NULL, strings and byte sequences take their host
// shape; other values are kept as they are.
func (m *Materializer) Row(values []any, typeNames []string, convert bool) ([]tostring.Value, error) {
	if len(typeNames) < len(values) {
		return nil, errors.Wrapf(ErrTypeNames, "%d type names for %d values", len(typeNames), len(values))
	}
	out := make([]tostring.Value, len(values))
	for i, v := range values {
		binary := typename.Binary(typeNames[i])
		if !convert {
			out[i] = tostring.Keep(binary, v)
			continue
		}
		hv, err := tostring.Convert(typename.Map(typeNames[i]), binary, v)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", i)
		}
		out[i] = hv
	}
	return out, nil
}

// Metadata reads the metadata of the first fieldCount columns of source.
// There is no partial result: the first failure is returned.
func (m *Materializer) Metadata(source any, fieldCount int) ([]metadata.Column, error) {
	out := make([]metadata.Column, fieldCount)
	for i := range out {
		col, err := m.extractor.Extract(source, i)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}
