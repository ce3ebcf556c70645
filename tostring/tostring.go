// Package tostring converts values produced by the MySQL client into the
// host value representation: NULL, a string, or a byte sequence. Numbers,
// booleans and dates are rendered as text the way the host runtime prints
// them.
package tostring

import (
	"encoding/json"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// jsonStd is a high-performance JSON encoder/decoder compatible with the standard library.
var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind is the shape of a host value.
type Kind uint8

const (
	// Null is the database NULL.
	Null Kind = iota
	// Text is a character string.
	Text
	// Bytes is a binary byte sequence.
	Bytes
	// Native is an unconverted driver value, produced only when conversion
	// is turned off.
	Native
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Text:
		return "text"
	case Bytes:
		return "bytes"
	case Native:
		return "native"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one materialized cell.
type Value struct {
	Kind   Kind
	Text   string
	Bytes  []byte
	Native any
}

// NullValue returns the NULL value.
func NullValue() Value { return Value{Kind: Null} }

// TextValue returns s as a text value.
func TextValue(s string) Value { return Value{Kind: Text, Text: s} }

// BytesValue returns b as a byte sequence value. b is not copied.
func BytesValue(b []byte) Value { return Value{Kind: Bytes, Bytes: b} }

// NativeValue carries v unconverted.
func NativeValue(v any) Value { return Value{Kind: Native, Native: v} }

// IsNULL reports whether v is the database NULL.
func (v Value) IsNULL() bool { return v.Kind == Null }

// Interface returns v as a plain Go value: nil, a string, a []byte or the
// native value.
func (v Value) Interface() any {
	switch v.Kind {
	case Text:
		return v.Text
	case Bytes:
		return v.Bytes
	case Native:
		return v.Native
	}
	return nil
}

// String renders v for textual sinks. NULL renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case Text:
		return v.Text
	case Bytes:
		return string(v.Bytes)
	case Native:
		return nativeString(v.Native)
	}
	return ""
}

// nativeString renders a value that skipped conversion. Types implementing
// json.Marshaler or fmt.Stringer render through those; anything else is
// marshaled to JSON, falling back to fmt.
func nativeString(v any) string {
	if v == nil {
		return ""
	}
	if raw, err := Classify(v); err == nil {
		if s, ok := raw.text(""); ok {
			return s
		}
	}
	if jsonMarshaler, ok := v.(json.Marshaler); ok {
		if jsonData, err := jsonMarshaler.MarshalJSON(); err == nil {
			return strings.Trim(string(jsonData), `"`)
		}
	}
	if fmtStringer, ok := v.(fmt.Stringer); ok {
		return fmtStringer.String()
	}
	if jsonData, err := jsonStd.Marshal(v); err == nil {
		return strings.Trim(string(jsonData), `"`)
	}
	return fmt.Sprintf("%v", v)
}
