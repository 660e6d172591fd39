package request

import (
	"fmt"
	"strconv"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Timestamp is a time.Time that also accepts RFC 3339 without seconds, and
// naive times which are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", b)
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("invalid timestamp %q, expected RFC 3339", s)
}

func (t *Timestamp) value() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
