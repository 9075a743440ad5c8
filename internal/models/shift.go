package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time without date, stored as seconds since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

// Of returns the time-of-day component of t in its own location.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// String renders HH:MM:SS.
func (t TimeOfDay) String() string {
	s := int(t) % secondsPerDay
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	parsed, err := ParseTimeOfDay(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner. lib/pq hands TIME columns over as time.Time
// anchored at year zero; text drivers hand over the raw string.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = Of(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	case int64:
		*t = TimeOfDay(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(raw string) error {
	if i := strings.IndexAny(raw, ".+"); i > 0 {
		raw = raw[:i]
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Shift is a recurring time-of-day window independent of calendar date.
type Shift struct {
	ID        int64     `db:"id" json:"id"`
	StartTime TimeOfDay `db:"start_time" json:"hora_inicio"`
	EndTime   TimeOfDay `db:"end_time" json:"hora_fin"`
}

// Contains reports whether at falls inside the half-open window
// [StartTime, EndTime). Windows whose end precedes the start wrap past midnight.
func (s Shift) Contains(at time.Time) bool {
	now := Of(at)
	if s.StartTime <= s.EndTime {
		return now >= s.StartTime && now < s.EndTime
	}
	return now >= s.StartTime || now < s.EndTime
}

// ShiftFilter lists shifts.
type ShiftFilter struct {
	Page
}
