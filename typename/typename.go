// Package typename maps the column type names reported by the MySQL client
// to the small set of type categories the host runtime displays.
package typename

import "strings"

// Category is a host type category.
type Category string

const (
	String    Category = "string"
	Int       Category = "int"
	Real      Category = "real"
	Year      Category = "year"
	Date      Category = "date"
	Timestamp Category = "timestamp"
	DateTime  Category = "datetime"
	Time      Category = "time"
	Set       Category = "set"
	Enum      Category = "enum"
	Blob      Category = "blob"
	Bit       Category = "bit"
	Null      Category = "NULL"
	Unknown   Category = "unknown"
)

var categories = map[string]Category{
	"VARCHAR": String,

	"INT":       Int,
	"BIGINT":    Int,
	"MEDIUMINT": Int,
	"SMALLINT":  Int,
	"TINYINT":   Int,

	"FLOAT":   Real,
	"DOUBLE":  Real,
	"DECIMAL": Real,

	"YEAR": Year,

	"DATE":    Date,
	"NEWDATE": Date,

	"TIMESTAMP": Timestamp,
	"DATETIME":  DateTime,
	"TIME":      Time,

	"SET":  Set,
	"ENUM": Enum,

	"TINY_BLOB":   Blob,
	"MEDIUM_BLOB": Blob,
	"LONG_BLOB":   Blob,
	"BLOB":        Blob,

	"BIT": Bit,
}

// aliases are the spellings github.com/go-sql-driver/mysql uses in
// ColumnType.DatabaseTypeName for the same native types.
var aliases = map[string]Category{
	"CHAR":      String,
	"BINARY":    String,
	"VARBINARY": String,

	"UNSIGNED INT":       Int,
	"UNSIGNED BIGINT":    Int,
	"UNSIGNED MEDIUMINT": Int,
	"UNSIGNED SMALLINT":  Int,
	"UNSIGNED TINYINT":   Int,

	"TINYBLOB":   Blob,
	"MEDIUMBLOB": Blob,
	"LONGBLOB":   Blob,
	"TINYTEXT":   Blob,
	"TEXT":       Blob,
	"MEDIUMTEXT": Blob,
	"LONGTEXT":   Blob,
}

// binaries are the type names whose values are byte sequences rather than
// character data. The driver reports BINARY, VARBINARY and the BLOB family
// only for columns of the binary character set.
var binaries = map[string]bool{
	"BINARY":      true,
	"VARBINARY":   true,
	"TINY_BLOB":   true,
	"MEDIUM_BLOB": true,
	"LONG_BLOB":   true,
	"TINYBLOB":    true,
	"MEDIUMBLOB":  true,
	"LONGBLOB":    true,
	"BLOB":        true,
	"BIT":         true,
	"GEOMETRY":    true,
}

// Binary reports whether byte sequences read from a column of the native
// type name are binary data. Byte sequences of character, numeric and
// temporal columns are text. Unrecognized names other than JSON are binary.
func Binary(native string) bool {
	n := strings.ToUpper(native)
	if binaries[n] {
		return true
	}
	return Map(native) == Unknown && n != "JSON"
}

// Map returns the category of the native type name. An empty name or "NULL"
// maps to Null, anything unrecognized to Unknown.
func Map(native string) Category {
	if native == "" || native == "NULL" {
		return Null
	}
	if c, ok := categories[native]; ok {
		return c
	}
	if c, ok := aliases[strings.ToUpper(native)]; ok {
		return c
	}
	return Unknown
}

// MapAll maps every name in natives.
func MapAll(natives []string) []Category {
	out := make([]Category, len(natives))
	for i, n := range natives {
		out[i] = Map(n)
	}
	return out
}

// IsNumeric reports whether values of category c are numbers on the host.
func IsNumeric(c Category) bool {
	switch c {
	case Int, Real, Year, Timestamp:
		return true
	}
	return false
}

// IsNumeric reports whether values of c are numbers on the host.
func (c Category) IsNumeric() bool { return IsNumeric(c) }
