package planner

import (
	"sort"
	"time"

	"taskflow/internal/model"
)

// Review is the weekly summary of a task list.
type Review struct {
	WeekStart      time.Time
	WeekEnd        time.Time
	Completed      []model.Task // done with completedAt inside the week
	CreatedCount   int
	Overdue        []model.Task // whole list, most overdue first
	ActiveCount    int
	DoneCount      int
	TotalCount     int
	CompletionRate int
	ComingUp       []model.Task // open and due within the next 7 days, nearest first
}

// WeeklyReview summarizes tasks over the Monday to Sunday week containing ref.
func WeeklyReview(tasks []model.Task, ref time.Time) Review {
	r := Review{
		WeekStart:  WeekStart(ref),
		WeekEnd:    WeekEnd(ref),
		TotalCount: len(tasks),
	}
	inWeek := func(t time.Time) bool {
		return !t.Before(r.WeekStart) && !t.After(r.WeekEnd)
	}

	for _, t := range tasks {
		if t.Done() {
			r.DoneCount++
			if t.CompletedAt != nil && inWeek(*t.CompletedAt) {
				r.Completed = append(r.Completed, t)
			}
		} else {
			r.ActiveCount++
			if d := DayOffset(t.TargetDate, ref); d >= 0 && d <= 7 {
				r.ComingUp = append(r.ComingUp, t)
			}
		}
		if inWeek(t.CreatedAt) {
			r.CreatedCount++
		}
		if IsOverdue(t, ref) {
			r.Overdue = append(r.Overdue, t)
		}
	}
	r.CompletionRate = CompletionRate(r.DoneCount, r.TotalCount)

	byOffset := func(list []model.Task) {
		sort.SliceStable(list, func(i, j int) bool {
			return DayOffset(list[i].TargetDate, ref) < DayOffset(list[j].TargetDate, ref)
		})
	}
	byOffset(r.Overdue)
	byOffset(r.ComingUp)

	return r
}
