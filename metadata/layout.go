package metadata

import (
	"runtime/debug"

	"github.com/pkg/errors"
)

// DriverModule is the module whose unexported layout MySQLLayout describes.
const DriverModule = "github.com/go-sql-driver/mysql"

// LayoutVersion is the driver version MySQLLayout was validated against.
const LayoutVersion = "v1.8.1"

// ErrDriverVersion is returned by CheckDriverVersion when the linked driver
// is not the version the layout was validated against.
var ErrDriverVersion = errors.New("metadata: mysql driver version differs from validated layout")

// Layout names the unexported members walked from a row source to one
// column descriptor.
type Layout struct {
	// Driver is the member of the row source holding the driver's rows
	// (database/sql keeps it in Rows.rowsi).
	Driver string
	// ResultSet is the per-result descriptor inside the driver rows.
	ResultSet string
	// Columns is the per-column descriptor sequence inside the result set.
	Columns string

	// Column descriptor members.
	Flags     string
	TableName string
	Length    string
	FieldType string
	CharSet   string
}

// MySQLLayout matches *sql.Rows holding rows of
// github.com/go-sql-driver/mysql at LayoutVersion.
var MySQLLayout = Layout{
	Driver:    "rowsi",
	ResultSet: "rs",
	Columns:   "columns",
	Flags:     "flags",
	TableName: "tableName",
	Length:    "length",
	FieldType: "fieldType",
	CharSet:   "charSet",
}

// CheckDriverVersion compares the driver version linked into the running
// binary with LayoutVersion. It returns nil when build information is not
// available, as in tests.
func CheckDriverVersion() error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	for _, dep := range info.Deps {
		if dep.Path != DriverModule {
			continue
		}
		if dep.Replace != nil {
			dep = dep.Replace
		}
		if dep.Version != LayoutVersion {
			return errors.Wrapf(ErrDriverVersion, "linked %s, validated %s", dep.Version, LayoutVersion)
		}
		return nil
	}
	return nil
}
