// Command myprobe runs a query against a MySQL server and prints the
// materialized rows, or the column metadata the driver keeps private.
//
//	myprobe -dsn 'user:pass@tcp(localhost:3306)/shop' -query 'SELECT * FROM orders'
//	myprobe -meta -query 'SELECT o.id AS order_id FROM orders o'
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/go-data-exporter/myresult"
	"github.com/go-data-exporter/myresult/accessor"
	"github.com/go-data-exporter/myresult/codec"
	csvcodec "github.com/go-data-exporter/myresult/codec/csv"
	jsoncodec "github.com/go-data-exporter/myresult/codec/json"
	"github.com/go-data-exporter/myresult/metadata"
	"github.com/go-data-exporter/myresult/scanner"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type config struct {
	dsn     string
	query   string
	format  string
	raw     bool
	limit   int
	meta    bool
	verbose bool
}

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func envBool(name string) bool {
	b, _ := strconv.ParseBool(os.Getenv(name))
	return b
}

func main() {
	var cfg config
	flag.StringVar(&cfg.dsn, "dsn", envOr("MYPROBE_DSN", "root@tcp(127.0.0.1:3306)/"), "MySQL DSN (env MYPROBE_DSN)")
	flag.StringVar(&cfg.query, "query", envOr("MYPROBE_QUERY", "SELECT 1"), "query to run (env MYPROBE_QUERY)")
	flag.StringVar(&cfg.format, "format", envOr("MYPROBE_FORMAT", "json"), "output format: json, ndjson or csv")
	flag.BoolVar(&cfg.raw, "raw", envBool("MYPROBE_RAW"), "keep driver values unconverted")
	flag.IntVar(&cfg.limit, "limit", -1, "maximum number of rows to print, -1 for all")
	flag.BoolVar(&cfg.meta, "meta", false, "print column metadata instead of rows")
	flag.BoolVar(&cfg.verbose, "v", envBool("MYPROBE_VERBOSE"), "log accessor builds")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("probe failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger, out io.Writer) error {
	if err := metadata.CheckDriverVersion(); err != nil {
		return err
	}

	db, err := connect(ctx, cfg.dsn, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, cfg.query)
	if err != nil {
		return errors.Wrap(err, "query")
	}
	defer rows.Close()

	cache := accessor.NewCache(accessor.WithLogger(logger))
	m := myresult.NewMaterializer(metadata.NewExtractor(cache))
	res, err := myresult.New(scanner.FromSQL(rows.Rows, "mysql"), m,
		myresult.WithLogger(logger),
		myresult.WithRawValues(cfg.raw),
	)
	if err != nil {
		return err
	}
	if err := res.SelfCheck(); err != nil {
		return err
	}
	logger.Debug("layout verified", "driver", metadata.DriverModule, "version", metadata.LayoutVersion, "accessors", cache.Len())

	if cfg.meta {
		return writeMetadata(res, out)
	}
	c, err := newCodec(cfg)
	if err != nil {
		return err
	}
	return myresult.NewExporter(res, c).Write(out)
}

// connect opens the database and pings it, so an unreachable server fails
// before the query is sent.
func connect(ctx context.Context, rawDSN string, logger *slog.Logger) (*sqlx.DB, error) {
	dsn, err := mysql.ParseDSN(rawDSN)
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}
	// Dates must arrive as time values for the zero-date sentinel to apply.
	dsn.ParseTime = true

	db, err := sqlx.ConnectContext(ctx, "mysql", dsn.FormatDSN())
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s@%s", dsn.User, dsn.Addr)
	}
	logger.Debug("connected", "addr", dsn.Addr, "db", dsn.DBName)
	return db, nil
}

func newCodec(cfg config) (codec.Codec, error) {
	switch cfg.format {
	case "json":
		return codec.JSON(jsoncodec.WithLimit(cfg.limit)), nil
	case "ndjson":
		return codec.JSON(jsoncodec.WithLimit(cfg.limit), jsoncodec.WithNewlineDelimited(true)), nil
	case "csv":
		n := 0
		return codec.CSV(csvcodec.WithPreProcessorFunc(func(row []string) ([]string, bool) {
			n++
			return row, cfg.limit < 0 || n <= cfg.limit
		})), nil
	}
	return nil, errors.Errorf("unknown format %q", cfg.format)
}

type columnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Numeric  bool   `json:"numeric"`
	Table    string `json:"table"`
	Flags    string `json:"flags"`
	Size     int    `json:"size"`
}

func writeMetadata(res *myresult.Result, out io.Writer) error {
	meta, err := res.CustomData()
	if err != nil {
		return err
	}
	info := make([]columnInfo, len(meta))
	for i, col := range meta {
		category, err := res.FieldType(i)
		if err != nil {
			return err
		}
		info[i] = columnInfo{
			Name:     res.Columns()[i].Name(),
			Type:     res.TypeNames()[i],
			Category: string(category),
			Numeric:  category.IsNumeric(),
			Table:    col.TableName,
			Flags:    col.Flags.String(),
			Size:     col.DisplaySize,
		}
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
