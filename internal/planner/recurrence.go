package planner

import (
	"time"

	"taskflow/internal/model"
)

// NextOccurrence returns the day a recurring task rolls over to. Monthly
// recurrence clamps to the last day of the next month, so Jan 31 becomes
// Feb 28 (or 29). Unknown frequencies return d unchanged.
func NextOccurrence(d model.Date, freq model.Frequency) model.Date {
	t, ok := d.In(time.UTC)
	if !ok {
		return d
	}

	switch freq {
	case model.FreqDaily:
		t = t.AddDate(0, 0, 1)
	case model.FreqWeekdays:
		for {
			t = t.AddDate(0, 0, 1)
			if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
				break
			}
		}
	case model.FreqWeekly:
		t = t.AddDate(0, 0, 7)
	case model.FreqMonthly:
		t = addMonthClamped(t)
	default:
		return d
	}
	return model.DateOf(t)
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	last := daysInMonth(month+1, year)
	if day > last {
		day = last
	}
	return time.Date(year, month+1, day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
