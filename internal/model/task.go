package model

import (
	"time"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities from most to least urgent. Unknown values rank with medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Frequency is the recurrence policy of a recurring task.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekdays Frequency = "weekdays"
	FreqWeekly   Frequency = "weekly"
	FreqMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekdays, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}

// Task represents a single item in the planner.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      Priority   `json:"priority"`
	Status        Status     `json:"status"`
	TargetDate    Date       `json:"targetDate"`
	Category      string     `json:"category"`
	IsRecurring   bool       `json:"isRecurring"`
	RecurringFreq Frequency  `json:"recurringFreq,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt"`
}

func (t Task) Done() bool {
	return t.Status == StatusDone
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

// CloneTasks copies a task list so callers can't mutate the owner's slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
