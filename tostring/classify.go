package tostring

import (
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// RawKind enumerates the driver value shapes the converter understands.
type RawKind uint8

const (
	RawNull RawKind = iota
	RawString
	RawBytes
	RawFloat
	RawInt
	RawUint
	RawBool
	RawTime
	RawDuration
	// RawPartialTime is a date that is present but not a calendar date,
	// such as 0000-00-00.
	RawPartialTime
)

// Raw is a classified driver value. Only the member matching Kind is set.
type Raw struct {
	Kind     RawKind
	String   string
	Bytes    []byte
	Float    float64
	BitSize  int
	Int      int64
	Uint     uint64
	Bool     bool
	Time     time.Time
	Duration time.Duration
}

// Classify maps a driver value onto its RawKind. It is the only place that
// switches on dynamic Go types; a value of any other type yields an
// *UnclassifiedError.
func Classify(v any) (Raw, error) {
	switch v := v.(type) {
	case nil:
		return Raw{Kind: RawNull}, nil
	case string:
		return Raw{Kind: RawString, String: v}, nil
	case []byte:
		if v == nil {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawBytes, Bytes: v}, nil
	case sql.RawBytes:
		if v == nil {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawBytes, Bytes: v}, nil
	case float64:
		return Raw{Kind: RawFloat, Float: v, BitSize: 64}, nil
	case float32:
		return Raw{Kind: RawFloat, Float: float64(v), BitSize: 32}, nil
	case int:
		return Raw{Kind: RawInt, Int: int64(v)}, nil
	case int8:
		return Raw{Kind: RawInt, Int: int64(v)}, nil
	case int16:
		return Raw{Kind: RawInt, Int: int64(v)}, nil
	case int32:
		return Raw{Kind: RawInt, Int: int64(v)}, nil
	case int64:
		return Raw{Kind: RawInt, Int: v}, nil
	case uint:
		return Raw{Kind: RawUint, Uint: uint64(v)}, nil
	case uint8:
		return Raw{Kind: RawUint, Uint: uint64(v)}, nil
	case uint16:
		return Raw{Kind: RawUint, Uint: uint64(v)}, nil
	case uint32:
		return Raw{Kind: RawUint, Uint: uint64(v)}, nil
	case uint64:
		return Raw{Kind: RawUint, Uint: v}, nil
	case bool:
		return Raw{Kind: RawBool, Bool: v}, nil
	case time.Time:
		// The driver decodes 0000-00-00 into the zero time.
		if v.IsZero() {
			return Raw{Kind: RawPartialTime}, nil
		}
		return Raw{Kind: RawTime, Time: v}, nil
	case time.Duration:
		return Raw{Kind: RawDuration, Duration: v}, nil
	case mysql.NullTime:
		return nullTime(v.Valid, v.Time), nil
	case sql.NullTime:
		return nullTime(v.Valid, v.Time), nil
	case sql.NullString:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawString, String: v.String}, nil
	case sql.NullInt64:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawInt, Int: v.Int64}, nil
	case sql.NullInt32:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawInt, Int: int64(v.Int32)}, nil
	case sql.NullInt16:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawInt, Int: int64(v.Int16)}, nil
	case sql.NullByte:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawUint, Uint: uint64(v.Byte)}, nil
	case sql.NullFloat64:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawFloat, Float: v.Float64, BitSize: 64}, nil
	case sql.NullBool:
		if !v.Valid {
			return Raw{Kind: RawNull}, nil
		}
		return Raw{Kind: RawBool, Bool: v.Bool}, nil
	}
	return Raw{}, unclassified(v)
}

func nullTime(valid bool, t time.Time) Raw {
	switch {
	case !valid:
		return Raw{Kind: RawNull}
	case t.IsZero():
		return Raw{Kind: RawPartialTime}
	}
	return Raw{Kind: RawTime, Time: t}
}
