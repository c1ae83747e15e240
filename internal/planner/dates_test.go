package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskflow/internal/model"
)

// Wednesday, mid-morning.
var ref = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

func day(offset int) model.Date {
	return model.DateOf(ref.AddDate(0, 0, offset))
}

func TestDayOffset(t *testing.T) {
	tests := []struct {
		name string
		date model.Date
		want int
	}{
		{"today", "2025-01-15", 0},
		{"tomorrow", "2025-01-16", 1},
		{"yesterday", "2025-01-14", -1},
		{"across month", "2025-02-01", 17},
		{"across year", "2024-12-31", -15},
		{"no date", "", NoDate},
		{"garbage", "soon", NoDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayOffset(tt.date, ref))
		})
	}
}

func TestDayOffsetIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2025, time.January, 15, 23, 59, 0, 0, time.UTC)
	early := time.Date(2025, time.January, 15, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, 1, DayOffset("2025-01-16", late))
	assert.Equal(t, 1, DayOffset("2025-01-16", early))
}

func TestDayOffsetAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2025-03-09 is the spring-forward day in New York.
	at := time.Date(2025, time.March, 8, 12, 0, 0, 0, loc)
	assert.Equal(t, 2, DayOffset("2025-03-10", at))
}

func TestRelativeLabel(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{-5, "5 days overdue"},
		{-2, "2 days overdue"},
		{-1, "1 day overdue"},
		{0, "Due today"},
		{1, "Due tomorrow"},
		{2, "2 days left"},
		{7, "7 days left"},
		{8, "Jan 23, 2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeLabel(day(tt.offset), ref), "offset %d", tt.offset)
	}
	assert.Empty(t, RelativeLabel("", ref))
}

func TestIsOverdue(t *testing.T) {
	open := model.Task{Status: model.StatusTodo, TargetDate: day(-2)}
	assert.True(t, IsOverdue(open, ref))

	done := open
	done.Status = model.StatusDone
	assert.False(t, IsOverdue(done, ref), "done tasks are never overdue")

	assert.False(t, IsOverdue(model.Task{Status: model.StatusTodo, TargetDate: day(0)}, ref))
	assert.False(t, IsOverdue(model.Task{Status: model.StatusTodo}, ref), "undated tasks are never overdue")
}

func TestWeekBounds(t *testing.T) {
	monday := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	assert.True(t, monday.Equal(WeekStart(ref)))
	end := WeekEnd(ref)
	assert.Equal(t, model.Date("2025-01-19"), model.DateOf(end))
	assert.Equal(t, 23, end.Hour())

	sunday := time.Date(2025, time.January, 19, 8, 0, 0, 0, time.UTC)
	assert.True(t, monday.Equal(WeekStart(sunday)), "Sunday belongs to the week that started six days earlier")
	assert.True(t, monday.Equal(WeekStart(monday)))
}
