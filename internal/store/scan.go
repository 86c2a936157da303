package store

import (
	"fmt"
	"time"
)

// sqliteTimeLayouts are the text forms a DATETIME column may hold,
// depending on how the value was written.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// timeScanner scans a DATETIME column that the driver may hand back either
// as time.Time or as text.
type timeScanner struct {
	t *time.Time
}

func (s timeScanner) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*s.t = time.Time{}
		return nil
	case time.Time:
		*s.t = x
		return nil
	case string:
		return s.parse(x)
	case []byte:
		return s.parse(string(x))
	case int64:
		*s.t = time.Unix(x, 0).UTC()
		return nil
	default:
		return fmt.Errorf("unsupported time value %T", v)
	}
}

func (s timeScanner) parse(raw string) error {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*s.t = t
			return nil
		}
	}
	return fmt.Errorf("parse time %q", raw)
}
