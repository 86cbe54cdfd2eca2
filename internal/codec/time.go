package codec

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeFormat is the layout written for every [Time].
//
// It is fixed width and always UTC, so lexical order matches chronological
// order.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Time is a time.Time that serializes as a canonical UTC timestamp.
type Time time.Time

// Now returns the current time, normalized.
func Now() Time {
	return ToTime(time.Now())
}

// ToTime converts a time.Time to a Time. The monotonic clock reading is
// stripped and the location set to UTC, matching what a decode yields.
func ToTime(t time.Time) Time {
	return Time(t.Round(0).UTC())
}

// AsTime returns the underlying time.Time value.
func (t Time) AsTime() time.Time {
	return time.Time(t)
}

// Before reports whether t is before u.
func (t Time) Before(u Time) bool {
	return time.Time(t).Before(time.Time(u))
}

// After reports whether t is after u.
func (t Time) After(u Time) bool {
	return time.Time(t).After(time.Time(u))
}

// Equal reports whether t and u represent the same instant.
func (t Time) Equal(u Time) bool {
	return time.Time(t).Equal(time.Time(u))
}

// Compare returns -1, 0 or +1 like time.Time.Compare.
func (t Time) Compare(u Time) int {
	return time.Time(t).Compare(time.Time(u))
}

// IsZero reports whether t is the zero instant.
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

// String returns the canonical representation.
func (t Time) String() string {
	return time.Time(t).UTC().Format(TimeFormat)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler. Any RFC 3339 timestamp is
// accepted, with or without fractional seconds.
func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = ToTime(parsed)
	return nil
}
