package myresult

import (
	"io"
	"os"

	"github.com/go-data-exporter/myresult/codec"
)

// Exporter writes the remaining rows of a Result through a codec.
type Exporter struct {
	result *Result
	codec  codec.Codec
}

func NewExporter(result *Result, codec codec.Codec) *Exporter {
	return &Exporter{
		result: result,
		codec:  codec,
	}
}

func (cs *Exporter) Write(writer io.Writer) error {
	return cs.codec.Write(cs.result, writer)
}

func (cs *Exporter) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := cs.Write(f); err != nil {
		return err
	}
	return f.Close()
}
