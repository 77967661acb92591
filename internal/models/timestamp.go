package models

import (
	"bytes"
	"fmt"
	"time"
)

// localTimestampLayout is an ISO-8601 timestamp without a zone offset.
// The fractional seconds are optional.
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a request time that accepts RFC3339 as well as ISO-8601
// timestamps without an offset. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a string")
	}

	parsed, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses s as RFC3339, falling back to a zone-less
// timestamp in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.ParseInLocation(localTimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return parsed, nil
}
