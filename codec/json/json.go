package jsoncodec

import (
	"io"
	"reflect"

	jsoniter "github.com/json-iterator/go"

	"github.com/go-data-exporter/myresult/scanner"
	"github.com/go-data-exporter/myresult/tostring"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Option func(*jsonCodec)

type jsonCodec struct {
	customMapper     map[reflect.Type]func(any, scanner.Metadata) any
	preProcessorFunc func(rowID int, row map[string]any) (map[string]any, bool)
	newlineDelimited bool
	limit            int
}

func New(opts ...Option) *jsonCodec {
	c := &jsonCodec{
		customMapper: make(map[reflect.Type]func(any, scanner.Metadata) any),
		limit:        -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithPreProcessorFunc(fn func(rowID int, row map[string]any) (map[string]any, bool)) Option {
	return func(c *jsonCodec) {
		c.preProcessorFunc = fn
	}
}

func WithNewlineDelimited(isNewlineDelimited bool) Option {
	return func(c *jsonCodec) {
		c.newlineDelimited = isNewlineDelimited
	}
}

// WithCustomType maps unconverted values of type T, as produced when
// conversion is off. A mapper for []byte also applies to byte sequences,
// which are otherwise written as base64.
func WithCustomType[T any](fn func(v T, metadata scanner.Metadata) any) Option {
	return func(c *jsonCodec) {
		var zero T
		typ := reflect.TypeOf(zero)
		if c.customMapper == nil {
			c.customMapper = make(map[reflect.Type]func(any, scanner.Metadata) any)
		}
		c.customMapper[typ] = func(v any, metadata scanner.Metadata) any {
			return fn(v.(T), metadata)
		}
	}
}

func WithLimit(limit int) Option {
	return func(c *jsonCodec) {
		c.limit = limit
	}
}

var bytesType = reflect.TypeOf([]byte(nil))

func (c *jsonCodec) value(v tostring.Value, meta scanner.Metadata) any {
	switch v.Kind {
	case tostring.Native:
		if fn, ok := c.customMapper[reflect.TypeOf(v.Native)]; ok {
			return fn(v.Native, meta)
		}
	case tostring.Bytes:
		if fn, ok := c.customMapper[bytesType]; ok {
			return fn(v.Bytes, meta)
		}
	}
	return v.Interface()
}

func (c *jsonCodec) Write(rows scanner.ValueRows, writer io.Writer) error {
	cols := rows.Columns()
	columnNames := make([]string, 0, len(cols))
	for _, col := range cols {
		columnNames = append(columnNames, col.Name())
	}
	rowID := 1
	written := 0
	defer func() {
		if !c.newlineDelimited && written != 0 {
			writer.Write([]byte("\n]\n"))
		}
	}()
	if c.limit == 0 {
		return nil
	}
	for rows.Next() {
		values, err := rows.Row()
		if err != nil {
			return err
		}
		row := make(map[string]any, len(values))
		for i, col := range columnNames {
			row[col] = c.value(values[i], scanner.Metadata{
				RowID:  rowID,
				Driver: rows.Driver(),
				Column: cols[i],
			})
		}

		writeRow := true
		if c.preProcessorFunc != nil {
			row, writeRow = c.preProcessorFunc(rowID, row)
		}
		rowID++
		if !writeRow {
			continue
		}

		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if !c.newlineDelimited {
			if written == 0 {
				writer.Write([]byte("["))
			} else {
				writer.Write([]byte(","))
			}
			writer.Write([]byte("\n"))
			writer.Write(data)
		} else {
			writer.Write(data)
			writer.Write([]byte("\n"))
		}
		written++
		if c.limit >= 0 && written >= c.limit {
			return nil
		}
	}
	return rows.Err()
}
