package tostring

import (
	"strconv"

	"github.com/go-data-exporter/myresult/typename"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"

	zeroDate     = "0000-00-00"
	zeroDateTime = "0000-00-00 00:00:00"
)

// Convert materializes driver value v of a column of category c. binary
// tells whether the column holds binary data; see typename.Binary.
//
// NULL stays NULL and strings pass through. Byte sequences stay byte
// sequences in binary columns and become text in all others, which is how
// the driver delivers character, decimal and unparsed temporal values.
// Numbers and booleans become decimal text, and dates are formatted
// according to c. A date that is present but invalid becomes the zero-date
// sentinel.
func Convert(c typename.Category, binary bool, v any) (Value, error) {
	raw, err := Classify(v)
	if err != nil {
		return Value{}, err
	}
	switch raw.Kind {
	case RawNull:
		return NullValue(), nil
	case RawString:
		return TextValue(raw.String), nil
	case RawBytes:
		return bytesValue(binary, raw.Bytes), nil
	}
	s, ok := raw.text(c)
	if !ok {
		return Value{}, unclassified(v)
	}
	return TextValue(s), nil
}

// Keep materializes v without conversion. NULL, strings and byte sequences
// take their host shape, byte sequences of columns that are not binary
// becoming text; every other value is carried as Native.
func Keep(binary bool, v any) Value {
	raw, err := Classify(v)
	if err != nil {
		return NativeValue(v)
	}
	switch raw.Kind {
	case RawNull:
		return NullValue()
	case RawString:
		return TextValue(raw.String)
	case RawBytes:
		return bytesValue(binary, raw.Bytes)
	}
	return NativeValue(v)
}

func bytesValue(binary bool, b []byte) Value {
	if binary {
		return BytesValue(b)
	}
	return TextValue(string(b))
}

// text renders the scalar kinds. It reports false for the kinds that are
// not rendered as text.
func (r Raw) text(c typename.Category) (string, bool) {
	switch r.Kind {
	case RawFloat:
		return FormatFloat(r.Float, r.BitSize), true
	case RawInt:
		return strconv.FormatInt(r.Int, 10), true
	case RawUint:
		return strconv.FormatUint(r.Uint, 10), true
	case RawBool:
		if r.Bool {
			return "1", true
		}
		return "0", true
	case RawTime:
		if c == typename.Date {
			return r.Time.Format(dateLayout), true
		}
		return r.Time.Format(dateTimeLayout), true
	case RawDuration:
		return r.Duration.String(), true
	case RawPartialTime:
		if c == typename.Date {
			return zeroDate, true
		}
		return zeroDateTime, true
	case RawString:
		return r.String, true
	case RawBytes:
		return string(r.Bytes), true
	}
	return "", false
}
