package myresult_test

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/go-data-exporter/myresult"
	"github.com/go-data-exporter/myresult/accessor"
	"github.com/go-data-exporter/myresult/codec"
	jsoncodec "github.com/go-data-exporter/myresult/codec/json"
	"github.com/go-data-exporter/myresult/internal/fakemysql"
	"github.com/go-data-exporter/myresult/metadata"
	"github.com/go-data-exporter/myresult/scanner"
	"github.com/go-data-exporter/myresult/tostring"
	"github.com/go-data-exporter/myresult/typename"
)

var (
	day     = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	instant = time.Date(2024, 1, 5, 13, 4, 59, 0, time.UTC)
)

var ordersFixture = fakemysql.Fixture{
	Columns: []fakemysql.Column{
		{
			Name: "id", Table: "orders", Length: 20, Type: fakemysql.TypeLongLong, CharSet: fakemysql.CharsetBinary,
			Flags:        uint16(metadata.NotNull | metadata.PrimaryKey | metadata.Unsigned | metadata.AutoIncrement | metadata.Number),
			DatabaseType: "UNSIGNED BIGINT",
		},
		{
			Name: "customer", Table: "orders", Length: 120, Type: fakemysql.TypeVarString, CharSet: fakemysql.CharsetUTF8MB4,
			Flags: uint16(metadata.NotNull | metadata.MultipleKey), DatabaseType: "VARCHAR",
		},
		{
			Name: "placed", Table: "orders", Length: 10, Type: fakemysql.TypeDate, CharSet: fakemysql.CharsetBinary,
			Flags: uint16(metadata.Binary), DatabaseType: "DATE",
		},
		{
			Name: "shipped", Table: "orders", Length: 19, Type: fakemysql.TypeDateTime, CharSet: fakemysql.CharsetBinary,
			Flags: uint16(metadata.Binary), DatabaseType: "DATETIME",
		},
		{
			Name: "total", Table: "", Length: 22, Type: fakemysql.TypeDouble, CharSet: fakemysql.CharsetBinary,
			Flags: uint16(metadata.Number), DatabaseType: "DOUBLE",
		},
		{
			Name: "note", Table: "orders", Length: 765, Type: fakemysql.TypeBlob, CharSet: fakemysql.CharsetUTF8,
			Flags: uint16(metadata.Blob), DatabaseType: "TEXT",
		},
	},
	Rows: [][]driver.Value{
		{int64(1), []byte("alice"), day, instant, 3.14, []byte("fragile")},
		{int64(2), []byte("bob"), time.Time{}, time.Time{}, float64(100), nil},
	},
}

// goodsFixture carries cells the way the MySQL text protocol delivers them
// when times are not parsed: everything but integers and floats as bytes.
var goodsFixture = fakemysql.Fixture{
	Columns: []fakemysql.Column{
		{Name: "name", Table: "goods", Length: 80, Type: fakemysql.TypeVarString, CharSet: fakemysql.CharsetUTF8MB4, DatabaseType: "VARCHAR"},
		{Name: "price", Table: "goods", Length: 7, Type: fakemysql.TypeNewDecimal, CharSet: fakemysql.CharsetBinary, Flags: uint16(metadata.Binary | metadata.Number), DatabaseType: "DECIMAL"},
		{Name: "opens", Table: "goods", Length: 10, Type: fakemysql.TypeTime, CharSet: fakemysql.CharsetBinary, Flags: uint16(metadata.Binary), DatabaseType: "TIME"},
		{Name: "size", Table: "goods", Length: 24, Type: fakemysql.TypeString, CharSet: fakemysql.CharsetUTF8MB4, Flags: uint16(metadata.Enum), DatabaseType: "ENUM"},
		{Name: "added", Table: "goods", Length: 10, Type: fakemysql.TypeDate, CharSet: fakemysql.CharsetBinary, Flags: uint16(metadata.Binary), DatabaseType: "DATE"},
		{Name: "sku", Table: "goods", Length: 16, Type: fakemysql.TypeVarString, CharSet: fakemysql.CharsetBinary, Flags: uint16(metadata.Binary), DatabaseType: "VARBINARY"},
		{Name: "photo", Table: "goods", Length: 65535, Type: fakemysql.TypeBlob, CharSet: fakemysql.CharsetBinary, Flags: uint16(metadata.Blob | metadata.Binary), DatabaseType: "BLOB"},
		{Name: "mask", Table: "goods", Length: 8, Type: fakemysql.TypeBit, CharSet: fakemysql.CharsetBinary, Flags: uint16(metadata.Unsigned), DatabaseType: "BIT"},
	},
	Rows: [][]driver.Value{
		{[]byte("pen"), []byte("12.50"), []byte("10:11:12"), []byte("small"), []byte("0000-00-00"), []byte{0x01, 0xfe}, []byte{0xff, 0xd8}, []byte{0x05}},
	},
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMaterializer() (*myresult.Materializer, *accessor.Cache) {
	cache := accessor.NewCache(accessor.WithLogger(discard()))
	return myresult.NewMaterializer(metadata.NewExtractor(cache)), cache
}

func openResult(t *testing.T, m *myresult.Materializer, fx fakemysql.Fixture, opts ...myresult.Option) *myresult.Result {
	t.Helper()
	db, err := fakemysql.Open(fx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rows, err := db.Query("SELECT * FROM orders")
	require.NoError(t, err)
	r, err := myresult.New(scanner.FromSQL(rows, fakemysql.DriverName), m, append([]myresult.Option{myresult.WithLogger(discard())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestResultMetadata(t *testing.T) {
	m, cache := newMaterializer()
	r := openResult(t, m, ordersFixture)

	size, err := r.ColumnSize(1)
	require.NoError(t, err)
	assert.Equal(t, 30, size)

	size, err = r.ColumnSize(5)
	require.NoError(t, err)
	assert.Equal(t, 765, size, "blob columns keep their byte length")

	flags, err := r.FieldFlags(0)
	require.NoError(t, err)
	assert.True(t, flags.Has(metadata.PrimaryKey|metadata.Unsigned))
	assert.Equal(t, "not_null primary_key unsigned auto_increment", flags.String())

	table, err := r.RealTableName(0)
	require.NoError(t, err)
	assert.Equal(t, "orders", table)

	table, err = r.RealTableName(4)
	require.NoError(t, err)
	assert.Empty(t, table)

	meta, err := r.CustomData()
	require.NoError(t, err)
	assert.Equal(t, []metadata.Column{
		{TableName: "orders", Flags: metadata.NotNull | metadata.PrimaryKey | metadata.Unsigned | metadata.AutoIncrement | metadata.Number, DisplaySize: 20},
		{TableName: "orders", Flags: metadata.NotNull | metadata.MultipleKey, DisplaySize: 30},
		{TableName: "orders", Flags: metadata.Binary, DisplaySize: 10},
		{TableName: "orders", Flags: metadata.Binary, DisplaySize: 19},
		{TableName: "", Flags: metadata.Number, DisplaySize: 22},
		{TableName: "orders", Flags: metadata.Blob, DisplaySize: 765},
	}, meta)

	builds := cache.Builds()
	again, err := r.CustomData()
	require.NoError(t, err)
	assert.Same(t, &meta[0], &again[0], "metadata is read once per result")
	assert.Equal(t, builds, cache.Builds())
}

func TestResultInvalidFieldIndex(t *testing.T) {
	m, cache := newMaterializer()
	var logs bytes.Buffer
	r := openResult(t, m, ordersFixture, myresult.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	for _, i := range []int{-1, len(ordersFixture.Columns), 100} {
		_, err := r.FieldFlags(i)
		assert.True(t, errors.Is(err, myresult.ErrInvalidFieldIndex), "FieldFlags(%d): %v", i, err)
		assert.False(t, errors.Is(err, accessor.ErrIntegrationDefect))

		_, err = r.RealTableName(i)
		assert.True(t, errors.Is(err, myresult.ErrInvalidFieldIndex), "RealTableName(%d): %v", i, err)

		_, err = r.ColumnSize(i)
		assert.True(t, errors.Is(err, myresult.ErrInvalidFieldIndex), "ColumnSize(%d): %v", i, err)

		_, err = r.FieldType(i)
		assert.True(t, errors.Is(err, myresult.ErrInvalidFieldIndex))

		assert.True(t, errors.Is(r.FieldSeek(i), myresult.ErrInvalidFieldIndex))
	}
	assert.Zero(t, cache.Builds(), "bounds are checked before any accessor is built")
	assert.Contains(t, logs.String(), "invalid field index")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestResultValues(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, ordersFixture)

	_, err := r.Row()
	assert.True(t, errors.Is(err, myresult.ErrNoRow))

	require.True(t, r.Next())
	row, err := r.Row()
	require.NoError(t, err)
	assert.Equal(t, []tostring.Value{
		tostring.TextValue("1"),
		tostring.TextValue("alice"),
		tostring.TextValue("2024-01-05"),
		tostring.TextValue("2024-01-05 13:04:59"),
		tostring.TextValue("3.14"),
		tostring.TextValue("fragile"),
	}, row)

	// The same instant read as a datetime column.
	names := append([]string(nil), r.TypeNames()...)
	names[2] = "DATETIME"
	row, err = r.Values(names, true)
	require.NoError(t, err)
	assert.Equal(t, tostring.TextValue("2024-01-05 00:00:00"), row[2])

	require.True(t, r.Next())
	row, err = r.Row()
	require.NoError(t, err)
	assert.Equal(t, []tostring.Value{
		tostring.TextValue("2"),
		tostring.TextValue("bob"),
		tostring.TextValue("0000-00-00"),
		tostring.TextValue("0000-00-00 00:00:00"),
		tostring.TextValue("100"),
		tostring.NullValue(),
	}, row)

	assert.False(t, r.Next())
	require.NoError(t, r.Err())
	_, err = r.Row()
	assert.True(t, errors.Is(err, myresult.ErrNoRow))
}

func TestResultRawValues(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, ordersFixture)
	require.True(t, r.Next())

	row, err := r.Values(r.TypeNames(), false)
	require.NoError(t, err)
	assert.Equal(t, tostring.NativeValue(int64(1)), row[0])
	assert.Equal(t, tostring.TextValue("alice"), row[1])
	assert.Equal(t, tostring.NativeValue(day), row[2])
	assert.Equal(t, tostring.NativeValue(3.14), row[4])
	assert.Equal(t, tostring.TextValue("fragile"), row[5])

	require.True(t, r.Next())
	row, err = r.Values(r.TypeNames(), false)
	require.NoError(t, err)
	assert.Equal(t, tostring.NullValue(), row[5])

	raw := openResult(t, m, ordersFixture, myresult.WithRawValues(true))
	require.True(t, raw.Next())
	row, err = raw.Row()
	require.NoError(t, err)
	assert.Equal(t, tostring.NativeValue(int64(1)), row[0])
}

func TestResultTypeNamesMismatch(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, ordersFixture)
	require.True(t, r.Next())
	_, err := r.Values([]string{"INT"}, true)
	assert.True(t, errors.Is(err, myresult.ErrTypeNames))

	longer := append(append([]string(nil), r.TypeNames()...), "BLOB", "INT")
	row, err := r.Values(longer, true)
	require.NoError(t, err)
	assert.Len(t, row, len(ordersFixture.Columns))
	assert.Equal(t, tostring.TextValue("alice"), row[1])
}

func TestResultDriverBytes(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, goodsFixture)
	require.True(t, r.Next())

	row, err := r.Row()
	require.NoError(t, err)
	assert.Equal(t, []tostring.Value{
		tostring.TextValue("pen"),
		tostring.TextValue("12.50"),
		tostring.TextValue("10:11:12"),
		tostring.TextValue("small"),
		tostring.TextValue("0000-00-00"),
		tostring.BytesValue([]byte{0x01, 0xfe}),
		tostring.BytesValue([]byte{0xff, 0xd8}),
		tostring.BytesValue([]byte{0x05}),
	}, row)

	raw, err := r.Values(r.TypeNames(), false)
	require.NoError(t, err)
	assert.Equal(t, row, raw, "raw mode gives bytes the same shape")

	size, err := r.ColumnSize(0)
	require.NoError(t, err)
	assert.Equal(t, 20, size)
	size, err = r.ColumnSize(3)
	require.NoError(t, err)
	assert.Equal(t, 24, size, "enum columns keep their byte length")
}

func TestResultFields(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, ordersFixture)

	assert.Equal(t, len(ordersFixture.Columns), r.FieldCount())
	assert.Equal(t, fakemysql.DriverName, r.Driver())
	assert.Len(t, r.Columns(), r.FieldCount())

	name, err := r.FieldName(1)
	require.NoError(t, err)
	assert.Equal(t, "customer", name)

	want := []typename.Category{typename.Int, typename.String, typename.Date, typename.DateTime, typename.Real, typename.Blob}
	for i, c := range want {
		got, err := r.FieldType(i)
		require.NoError(t, err)
		assert.Equal(t, c, got, "field %d", i)
	}

	numeric, err := r.IsNumericField(0)
	require.NoError(t, err)
	assert.True(t, numeric)
	numeric, err = r.IsNumericField(2)
	require.NoError(t, err)
	assert.False(t, numeric)

	assert.Equal(t, 0, r.CurrentField())
	require.NoError(t, r.FieldSeek(1))
	assert.Equal(t, 1, r.CurrentField())
	flags, err := r.CurrentFieldFlags()
	require.NoError(t, err)
	assert.Equal(t, metadata.NotNull|metadata.MultipleKey, flags)
}

func TestResultMetadataAfterClose(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, ordersFixture)
	for r.Next() {
	}
	require.NoError(t, r.Close())

	size, err := r.ColumnSize(1)
	require.NoError(t, err)
	assert.Equal(t, 30, size)
}

func TestResultSelfCheck(t *testing.T) {
	m, cache := newMaterializer()
	r := openResult(t, m, ordersFixture)
	require.NoError(t, r.SelfCheck())
	builds := cache.Builds()
	assert.NotZero(t, builds)

	_, err := r.CustomData()
	require.NoError(t, err)
	assert.Equal(t, builds, cache.Builds(), "self check builds every accessor")
}

func TestResultSharedMaterializer(t *testing.T) {
	m, cache := newMaterializer()
	results := make([]*myresult.Result, 16)
	for i := range results {
		results[i] = openResult(t, m, ordersFixture)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(results))
	metas := make([][]metadata.Column, len(results))
	for i, r := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metas[i], errs[i] = r.CustomData()
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, metas[0], metas[i])
	}
	assert.Equal(t, int64(cache.Len()), cache.Builds(), "every accessor is built once")
}

func TestResultInMemoryRows(t *testing.T) {
	m, _ := newMaterializer()
	rows := scanner.FromDataWithTypes([][]any{{int64(7), time.Time{}}}, []string{"INT", "DATE"})
	r, err := myresult.New(rows, m, myresult.WithLogger(discard()))
	require.NoError(t, err)

	require.True(t, r.Next())
	row, err := r.Row()
	require.NoError(t, err)
	assert.Equal(t, []tostring.Value{tostring.TextValue("7"), tostring.TextValue("0000-00-00")}, row)

	_, err = r.ColumnSize(0)
	assert.True(t, errors.Is(err, myresult.ErrNoSource))
	_, err = r.CustomData()
	assert.True(t, errors.Is(err, myresult.ErrNoSource))
	assert.True(t, errors.Is(r.SelfCheck(), myresult.ErrNoSource))
}

func TestResultUnclassifiedValue(t *testing.T) {
	m, _ := newMaterializer()
	rows := scanner.FromDataWithTypes([][]any{{complex(1, 1)}}, []string{"DOUBLE"})
	r, err := myresult.New(rows, m, myresult.WithLogger(discard()))
	require.NoError(t, err)
	require.True(t, r.Next())

	_, err = r.Row()
	assert.True(t, errors.Is(err, tostring.ErrUnclassifiedValue))

	row, err := r.Values(r.TypeNames(), false)
	require.NoError(t, err)
	assert.Equal(t, tostring.Native, row[0].Kind)
}

func TestResultForeignDriver(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE items (id INTEGER, name TEXT, price REAL, data BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO items VALUES (1, 'pen', 2.5, x'0102'), (2, NULL, 0.1, NULL)`)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT id, name, price, data FROM items ORDER BY id`)
	require.NoError(t, err)
	m, _ := newMaterializer()
	r, err := myresult.New(scanner.FromSQL(rows, "sqlite"), m, myresult.WithLogger(discard()))
	require.NoError(t, err)
	defer r.Close()

	var got [][]tostring.Value
	for r.Next() {
		row, err := r.Row()
		require.NoError(t, err)
		got = append(got, row)
	}
	require.NoError(t, r.Err())
	assert.Equal(t, [][]tostring.Value{
		{tostring.TextValue("1"), tostring.TextValue("pen"), tostring.TextValue("2.5"), tostring.BytesValue([]byte{1, 2})},
		{tostring.TextValue("2"), tostring.NullValue(), tostring.TextValue("0.1"), tostring.NullValue()},
	}, got)

	_, err = r.FieldFlags(0)
	assert.True(t, errors.Is(err, accessor.ErrIntegrationDefect))
	assert.True(t, errors.Is(r.SelfCheck(), accessor.ErrIntegrationDefect))
}

func TestExporter(t *testing.T) {
	m, _ := newMaterializer()
	r := openResult(t, m, ordersFixture)

	var buf bytes.Buffer
	require.NoError(t, myresult.NewExporter(r, codec.JSON(jsoncodec.WithNewlineDelimited(true))).Write(&buf))
	assert.Equal(t,
		`{"customer":"alice","id":"1","note":"fragile","placed":"2024-01-05","shipped":"2024-01-05 13:04:59","total":"3.14"}`+"\n"+
			`{"customer":"bob","id":"2","note":null,"placed":"0000-00-00","shipped":"0000-00-00 00:00:00","total":"100"}`+"\n",
		buf.String())

	r = openResult(t, m, ordersFixture)
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, myresult.NewExporter(r, codec.CSV()).WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"id,customer,placed,shipped,total,note\n"+
			"1,alice,2024-01-05,2024-01-05 13:04:59,3.14,fragile\n"+
			"2,bob,0000-00-00,0000-00-00 00:00:00,100,\n",
		string(data))
}
