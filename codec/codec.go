// Package codec writes materialized rows in textual formats.
package codec

import (
	"io"

	csvcodec "github.com/go-data-exporter/myresult/codec/csv"
	jsoncodec "github.com/go-data-exporter/myresult/codec/json"
	"github.com/go-data-exporter/myresult/scanner"
)

type Codec interface {
	Write(rows scanner.ValueRows, writer io.Writer) error
}

func JSON(opts ...jsoncodec.Option) Codec {
	return jsoncodec.New(opts...)
}

func CSV(opts ...csvcodec.Option) Codec {
	return csvcodec.New(opts...)
}
