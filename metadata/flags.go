package metadata

import "strings"

// ColumnFlags is the column flag bitmask as sent in the MySQL column
// definition packet.
type ColumnFlags uint32

const (
	NotNull       ColumnFlags = 1
	PrimaryKey    ColumnFlags = 2
	UniqueKey     ColumnFlags = 4
	MultipleKey   ColumnFlags = 8
	Blob          ColumnFlags = 16
	Unsigned      ColumnFlags = 32
	ZeroFill      ColumnFlags = 64
	Binary        ColumnFlags = 128
	Enum          ColumnFlags = 256
	AutoIncrement ColumnFlags = 512
	Timestamp     ColumnFlags = 1024
	Set           ColumnFlags = 2048
	Number        ColumnFlags = 32768
)

var flagWords = []struct {
	flag ColumnFlags
	word string
}{
	{NotNull, "not_null"},
	{PrimaryKey, "primary_key"},
	{UniqueKey, "unique_key"},
	{MultipleKey, "multiple_key"},
	{Blob, "blob"},
	{Unsigned, "unsigned"},
	{ZeroFill, "zerofill"},
	{Binary, "binary"},
	{Enum, "enum"},
	{AutoIncrement, "auto_increment"},
	{Timestamp, "timestamp"},
	{Set, "set"},
}

// Has reports whether every bit of flag is set.
func (f ColumnFlags) Has(flag ColumnFlags) bool {
	return f&flag == flag
}

// String renders f the way the host's field_flags function does: the
// lower-case names of the set flags separated by single spaces. NUMBER is
// not part of that vocabulary.
func (f ColumnFlags) String() string {
	words := make([]string, 0, len(flagWords))
	for _, fw := range flagWords {
		if f.Has(fw.flag) {
			words = append(words, fw.word)
		}
	}
	return strings.Join(words, " ")
}
