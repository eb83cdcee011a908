package projection

import (
	"fmt"
	"strconv"
	"time"
)

// Row is one decoded result row. Getters return ok == false for SQL NULL.
// A value that cannot be converted to the requested type is recorded and
// reported by Err; asking for a key that was never registered panics.
type Row struct {
	p      *Projection
	values []any
	err    error
}

func (r *Row) value(key string) any {
	i, ok := r.p.index[key]
	if !ok {
		panic(fmt.Sprintf("projection: column %q was not registered", key))
	}
	return r.values[i]
}

func (r *Row) fail(key string, v any, typ string) {
	if r.err == nil {
		r.err = fmt.Errorf("projection: column %q: cannot decode %T as %s", key, v, typ)
	}
}

// Err returns the first conversion error met by a getter.
func (r *Row) Err() error {
	return r.err
}

// IsNull reports whether the column is SQL NULL.
func (r *Row) IsNull(key string) bool {
	return r.value(key) == nil
}

// Int64 returns the column as an int64.
func (r *Row) Int64(key string) (int64, bool) {
	switch v := r.value(key).(type) {
	case nil:
		return 0, false
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case []byte:
		return r.parseInt(key, string(v))
	case string:
		return r.parseInt(key, v)
	default:
		r.fail(key, v, "int64")
		return 0, false
	}
}

func (r *Row) parseInt(key, s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.fail(key, s, "int64")
		return 0, false
	}
	return i, true
}

// Int returns the column as an int.
func (r *Row) Int(key string) (int, bool) {
	i, ok := r.Int64(key)
	return int(i), ok
}

// Float64 returns the column as a float64.
func (r *Row) Float64(key string) (float64, bool) {
	switch v := r.value(key).(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case []byte:
		return r.parseFloat(key, string(v))
	case string:
		return r.parseFloat(key, v)
	default:
		r.fail(key, v, "float64")
		return 0, false
	}
}

func (r *Row) parseFloat(key, s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(key, s, "float64")
		return 0, false
	}
	return f, true
}

// String returns the column as a string.
func (r *Row) String(key string) (string, bool) {
	switch v := r.value(key).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		r.fail(key, v, "string")
		return "", false
	}
}

// Bool returns the column as a bool. Integers are true when non-zero.
func (r *Row) Bool(key string) (bool, bool) {
	switch v := r.value(key).(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case int64:
		return v != 0, true
	default:
		s, ok := r.String(key)
		if !ok {
			return false, false
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			r.fail(key, v, "bool")
			return false, false
		}
		return b, true
	}
}

// Time parses a text column with layout. The result is in UTC.
func (r *Row) Time(key, layout string) (time.Time, bool) {
	s, ok := r.String(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		r.fail(key, s, "time")
		return time.Time{}, false
	}
	return t, true
}
