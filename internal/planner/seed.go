package planner

import (
	"time"

	"taskflow/internal/model"
)

// SeedTasks is the sample list a fresh local store starts with. It covers
// every priority, every status and both overdue and future dates. newID
// supplies the identifiers.
func SeedTasks(ref time.Time, newID func() string) []model.Task {
	day := func(offset int) model.Date {
		return model.DateOf(ref.AddDate(0, 0, offset))
	}
	completed := ref

	return []model.Task{
		{ID: newID(), Title: "Review quarterly sales report", Description: "Analyze Q4 numbers.", Priority: model.PriorityCritical, Status: model.StatusInProgress, TargetDate: day(0), Category: "Work", CreatedAt: ref},
		{ID: newID(), Title: "Update project documentation", Description: "Add new API endpoints.", Priority: model.PriorityHigh, Status: model.StatusTodo, TargetDate: day(2), Category: "Work", CreatedAt: ref},
		{ID: newID(), Title: "Team standup preparation", Description: "Gather sprint metrics.", Priority: model.PriorityMedium, Status: model.StatusTodo, TargetDate: day(1), Category: "Meetings", CreatedAt: ref},
		{ID: newID(), Title: "Fix authentication bug", Description: "Users getting logged out.", Priority: model.PriorityCritical, Status: model.StatusTodo, TargetDate: day(-2), Category: "Bug Fix", CreatedAt: ref},
		{ID: newID(), Title: "Plan team offsite agenda", Description: "Activities and venue for March.", Priority: model.PriorityLow, Status: model.StatusTodo, TargetDate: day(5), Category: "Personal", CreatedAt: ref},
		{ID: newID(), Title: "Deploy v2.1 to staging", Description: "Run full test suite.", Priority: model.PriorityHigh, Status: model.StatusInProgress, TargetDate: day(-1), Category: "DevOps", CreatedAt: ref},
		{ID: newID(), Title: "Write unit tests for payments", Description: "Cover edge cases.", Priority: model.PriorityMedium, Status: model.StatusDone, TargetDate: day(-3), Category: "Work", CreatedAt: ref, CompletedAt: &completed},
	}
}
