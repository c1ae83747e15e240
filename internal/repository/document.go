package repository

import (
	"time"

	"taskflow/internal/model"
)

// taskDocument is the stored form of a task in an owner's collection.
type taskDocument struct {
	ID            string `gorm:"primaryKey"`
	OwnerID       string `gorm:"index;not null"`
	Title         string `gorm:"not null"`
	Description   string
	Priority      string
	Status        string
	TargetDate    string
	Category      string
	IsRecurring   bool
	RecurringFreq string
	CreatedAt     time.Time `gorm:"index"`
	CompletedAt   *time.Time
}

func (taskDocument) TableName() string {
	return "task_documents"
}

func documentOf(ownerID, id string, t model.Task) taskDocument {
	doc := taskDocument{
		ID:            id,
		OwnerID:       ownerID,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(t.Priority),
		Status:        string(t.Status),
		TargetDate:    string(t.TargetDate),
		Category:      t.Category,
		IsRecurring:   t.IsRecurring,
		RecurringFreq: string(t.RecurringFreq),
		CreatedAt:     t.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		doc.CompletedAt = &at
	}
	return doc
}

func (d taskDocument) task() model.Task {
	return model.Task{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Priority:      model.Priority(d.Priority),
		Status:        model.Status(d.Status),
		TargetDate:    model.Date(d.TargetDate),
		Category:      d.Category,
		IsRecurring:   d.IsRecurring,
		RecurringFreq: model.Frequency(d.RecurringFreq),
		CreatedAt:     d.CreatedAt,
		CompletedAt:   d.CompletedAt,
	}
}
