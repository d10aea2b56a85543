package stores

import (
	"database/sql"
	"time"

	"github.com/oarkflow/date"
)

// parseFlexibleTime accepts whatever timestamp layout the backing driver
// hands back (RFC3339, "2006-01-02 15:04:05", bare dates).
func parseFlexibleTime(s string) (time.Time, error) {
	return date.Parse(s)
}

func timeFromColumn(col sql.NullString) (time.Time, error) {
	if !col.Valid || col.String == "" {
		return time.Time{}, nil
	}
	return parseFlexibleTime(col.String)
}

func sqlNullTimeOrNil(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
