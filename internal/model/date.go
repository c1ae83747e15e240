package model

import "time"

// DateLayout is the wire form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component, stored as YYYY-MM-DD.
// The zero value means "no date".
type Date string

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate accepts only the canonical YYYY-MM-DD form.
func ParseDate(s string) (Date, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", false
	}
	return DateOf(t), true
}

func (d Date) IsZero() bool {
	return d == ""
}

// In returns local midnight of the day in loc.
func (d Date) In(loc *time.Location) (time.Time, bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, string(d), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Date) String() string {
	return string(d)
}
