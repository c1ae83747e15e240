package model

import "time"

// Patch is a partial task update. Nil fields are left untouched.
type Patch struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Status        *Status
	TargetDate    *Date
	Category      *string
	IsRecurring   *bool
	RecurringFreq *Frequency
	CompletedAt   *time.Time
	// ClearCompletedAt removes completedAt; it wins over CompletedAt.
	ClearCompletedAt bool
}

// Apply writes the set fields of p onto t.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.TargetDate != nil {
		t.TargetDate = *p.TargetDate
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurringFreq != nil {
		t.RecurringFreq = *p.RecurringFreq
	}
	switch {
	case p.ClearCompletedAt:
		t.CompletedAt = nil
	case p.CompletedAt != nil:
		at := *p.CompletedAt
		t.CompletedAt = &at
	}
}

// Columns maps the set fields to snake_case column names for stores that
// apply partial updates in SQL.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.TargetDate != nil {
		cols["target_date"] = string(*p.TargetDate)
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.IsRecurring != nil {
		cols["is_recurring"] = *p.IsRecurring
	}
	if p.RecurringFreq != nil {
		cols["recurring_freq"] = string(*p.RecurringFreq)
	}
	switch {
	case p.ClearCompletedAt:
		cols["completed_at"] = nil
	case p.CompletedAt != nil:
		cols["completed_at"] = *p.CompletedAt
	}
	return cols
}

func (p Patch) Empty() bool {
	return len(p.Columns()) == 0
}
