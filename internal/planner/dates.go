// Package planner holds the scheduling engine: day arithmetic, record
// normalization, classification, recurrence and the weekly review.
package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/jinzhu/now"

	"taskflow/internal/model"
)

// NoDate is the day offset of a task without a target date. It sorts after
// every finite offset.
const NoDate = math.MaxInt

// Today returns the calendar day of t.
func Today(t time.Time) model.Date {
	return model.DateOf(now.With(t).BeginningOfDay())
}

// DayOffset is the signed number of calendar days from the day of ref to d.
// Time of day is ignored on both sides.
func DayOffset(d model.Date, ref time.Time) int {
	target, ok := d.In(ref.Location())
	if !ok {
		return NoDate
	}
	ty, tm, td := target.Date()
	ry, rm, rd := ref.Date()
	// Compare in UTC so DST shifts can't produce 23 or 25 hour days.
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// RelativeLabel renders the distance from ref to d for display.
func RelativeLabel(d model.Date, ref time.Time) string {
	diff := DayOffset(d, ref)
	switch {
	case diff == NoDate:
		return ""
	case diff < -1:
		return fmt.Sprintf("%d days overdue", -diff)
	case diff == -1:
		return "1 day overdue"
	case diff == 0:
		return "Due today"
	case diff == 1:
		return "Due tomorrow"
	case diff <= 7:
		return fmt.Sprintf("%d days left", diff)
	}
	return FormatDate(d, ref.Location())
}

// FormatDate renders d as "Jan 2, 2006".
func FormatDate(d model.Date, loc *time.Location) string {
	t, ok := d.In(loc)
	if !ok {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// IsOverdue reports whether an unfinished task's target day has passed.
func IsOverdue(t model.Task, ref time.Time) bool {
	return !t.Done() && DayOffset(t.TargetDate, ref) < 0
}

// WeekStart is Monday 00:00 of the week containing ref.
func WeekStart(ref time.Time) time.Time {
	return now.With(ref).Monday()
}

// WeekEnd is the last instant of the Sunday closing the week containing ref.
func WeekEnd(ref time.Time) time.Time {
	return now.With(ref).EndOfSunday()
}
