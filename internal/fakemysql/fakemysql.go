// Package fakemysql is a database/sql driver whose rows reproduce the
// unexported layout of github.com/go-sql-driver/mysql rows. It serves fixed
// result sets so the metadata path can be exercised without a server.
package fakemysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// DriverName is the name the driver is registered under.
const DriverName = "fakemysql"

// MySQL protocol field types used by fixtures.
const (
	TypeDecimal    byte = 0x00
	TypeTiny       byte = 0x01
	TypeLong       byte = 0x03
	TypeFloat      byte = 0x04
	TypeDouble     byte = 0x05
	TypeTimestamp  byte = 0x07
	TypeLongLong   byte = 0x08
	TypeDate       byte = 0x0a
	TypeTime       byte = 0x0b
	TypeDateTime   byte = 0x0c
	TypeYear       byte = 0x0d
	TypeVarChar    byte = 0x0f
	TypeBit        byte = 0x10
	TypeNewDecimal byte = 0xf6
	TypeEnum       byte = 0xf7
	TypeSet        byte = 0xf8
	TypeBlob       byte = 0xfc
	TypeVarString  byte = 0xfd
	TypeString     byte = 0xfe
)

// Collation ids used by fixtures.
const (
	CharsetLatin1  uint8 = 8
	CharsetUTF8    uint8 = 33
	CharsetUTF8MB4 uint8 = 45
	CharsetBinary  uint8 = 63
)

// Column describes one fixture column.
type Column struct {
	Name         string
	Table        string
	Length       uint32
	Flags        uint16
	Type         byte
	CharSet      uint8
	DatabaseType string
}

// Fixture is the single result set served by a connection.
type Fixture struct {
	Columns []Column
	Rows    [][]driver.Value
}

type fieldFlag uint16

type fieldType byte

// mysqlField, resultSet, mysqlRows and textRows keep the member names and
// types of the real driver.
type mysqlField struct {
	tableName string
	name      string
	length    uint32
	flags     fieldFlag
	fieldType fieldType
	decimals  byte
	charSet   uint8
}

type resultSet struct {
	columns     []mysqlField
	columnNames []string
	done        bool
}

type mysqlRows struct {
	mc     *conn
	rs     resultSet
	finish func()
}

type textRows struct {
	mysqlRows

	types []string
	data  [][]driver.Value
	pos   int
}

var (
	fixtures sync.Map
	seq      atomic.Int64
)

func init() {
	sql.Register(DriverName, fakeDriver{})
}

// Open returns a database whose every query answers with fx.
func Open(fx Fixture) (*sql.DB, error) {
	dsn := fmt.Sprintf("fixture-%d", seq.Add(1))
	fixtures.Store(dsn, fx)
	return sql.Open(DriverName, dsn)
}

type fakeDriver struct{}

func (fakeDriver) Open(dsn string) (driver.Conn, error) {
	fx, ok := fixtures.Load(dsn)
	if !ok {
		return nil, errors.Errorf("fakemysql: unknown fixture %q", dsn)
	}
	return &conn{fixture: fx.(Fixture)}, nil
}

type conn struct {
	fixture Fixture
}

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fakemysql: prepared statements are not supported")
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakemysql: transactions are not supported")
}

func (c *conn) QueryContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Rows, error) {
	fx := c.fixture
	rows := &textRows{
		mysqlRows: mysqlRows{mc: c},
		types:     make([]string, len(fx.Columns)),
		data:      fx.Rows,
	}
	for i, col := range fx.Columns {
		rows.rs.columns = append(rows.rs.columns, mysqlField{
			tableName: col.Table,
			name:      col.Name,
			length:    col.Length,
			flags:     fieldFlag(col.Flags),
			fieldType: fieldType(col.Type),
			charSet:   col.CharSet,
		})
		rows.rs.columnNames = append(rows.rs.columnNames, col.Name)
		rows.types[i] = col.DatabaseType
	}
	return rows, nil
}

func (r *textRows) Columns() []string {
	return r.rs.columnNames
}

func (r *textRows) Close() error {
	r.rs.done = true
	return nil
}

func (r *textRows) Next(dest []driver.Value) error {
	if r.rs.done || r.pos >= len(r.data) {
		r.rs.done = true
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

// ColumnTypeDatabaseTypeName implements driver.RowsColumnTypeDatabaseTypeName.
func (r *textRows) ColumnTypeDatabaseTypeName(i int) string {
	return r.types[i]
}
