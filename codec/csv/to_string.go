package csvcodec

import (
	"reflect"

	"github.com/go-data-exporter/myresult/scanner"
	"github.com/go-data-exporter/myresult/tostring"
)

// toString renders one materialized value for CSV output.
//
// NULL renders as the configured nullValue. Unconverted values whose type
// has a registered mapper render through it; everything else renders as
// tostring.Value.String does.
func (cs *csvCodec) toString(v tostring.Value, driver string, column scanner.Column) string {
	switch v.Kind {
	case tostring.Null:
		return cs.nullValue
	case tostring.Native:
		if fn, ok := cs.customMapper[reflect.TypeOf(v.Native)]; ok {
			return fn(v.Native, driver, column)
		}
	}
	return v.String()
}
