package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"taskflow/internal/model"
	"taskflow/internal/planner"
)

// ParseJSON reads a single object or an array of objects. Values of any
// JSON type are taken as text; nulls count as absent.
func ParseJSON(content string, now time.Time) (Result, error) {
	if !gjson.Valid(content) {
		return Result{}, &ParseError{Format: FormatJSON, Err: errors.New("invalid JSON")}
	}

	doc := gjson.Parse(content)
	items := []gjson.Result{doc}
	if doc.IsArray() {
		items = doc.Array()
	}

	res := Result{Rows: len(items)}
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		if task, ok := planner.Normalize(recordOf(item), now); ok {
			res.Tasks = append(res.Tasks, task)
		}
	}
	return res, nil
}

func recordOf(obj gjson.Result) planner.RawRecord {
	rec := make(planner.RawRecord)
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Null {
			rec[key.String()] = value.String()
		}
		return true
	})
	return rec
}

// exportedTask is a task without its identifier.
type exportedTask struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Priority      model.Priority  `json:"priority"`
	Status        model.Status    `json:"status"`
	TargetDate    model.Date      `json:"targetDate"`
	Category      string          `json:"category"`
	IsRecurring   bool            `json:"isRecurring"`
	RecurringFreq model.Frequency `json:"recurringFreq,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt"`
}

// ExportJSON renders tasks as a pretty-printed array without ids.
func ExportJSON(tasks []model.Task) (string, error) {
	out := make([]exportedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, exportedTask{
			Title:         t.Title,
			Description:   t.Description,
			Priority:      t.Priority,
			Status:        t.Status,
			TargetDate:    t.TargetDate,
			Category:      t.Category,
			IsRecurring:   t.IsRecurring,
			RecurringFreq: t.RecurringFreq,
			CreatedAt:     t.CreatedAt,
			CompletedAt:   t.CompletedAt,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}
