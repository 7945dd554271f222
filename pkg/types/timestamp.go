package types

import (
	"strconv"
	"time"
)

// Timestamp is a unix timestamp in seconds, the time unit the charting host and
// the analytics service exchange on the wire.
type Timestamp int64

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Unix())
}

func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0)
}

func (t Timestamp) Unix() int64 {
	return int64(t)
}

func (t Timestamp) String() string {
	return t.Time().UTC().Format(time.RFC3339)
}

// Mid returns the timestamp halfway between t and o, truncated to whole seconds.
func (t Timestamp) Mid(o Timestamp) Timestamp {
	return t + (o-t)/2
}

// ParseTimestamp accepts a unix second value or an RFC3339 / yyyy-mm-dd date.
func ParseTimestamp(s string) (Timestamp, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Timestamp(n), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}

	return 0, &time.ParseError{Layout: time.RFC3339, Value: s}
}

// VisibleRange is the time window currently shown by a chart.
type VisibleRange struct {
	From Timestamp `json:"from"`
	To   Timestamp `json:"to"`
}

// IsEmpty reports whether the range has no extent. Refreshes are skipped for empty ranges.
func (r VisibleRange) IsEmpty() bool {
	return r.From >= r.To
}

// ClampTo returns the range with its upper bound limited to t.
func (r VisibleRange) ClampTo(t Timestamp) VisibleRange {
	if r.To > t {
		r.To = t
	}
	return r
}

func (r VisibleRange) String() string {
	return r.From.String() + " ~ " + r.To.String()
}
