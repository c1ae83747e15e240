package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"taskflow/internal/model"
)

// RawRecord is a loosely typed input record keyed by source field name.
// CSV headers arrive lower-cased; JSON keys arrive as written.
type RawRecord map[string]string

// Field synonyms, tried in order. The first non-empty value wins.
var (
	titleKeys       = []string{"title", "Title", "name", "Name"}
	descriptionKeys = []string{"description", "Description"}
	priorityKeys    = []string{"priority", "Priority"}
	statusKeys      = []string{"status", "Status"}
	dateKeys        = []string{"targetDate", "targetdate", "target date", "date", "Date", "due", "Due"}
	categoryKeys    = []string{"category", "Category"}
	recurringKeys   = []string{"isRecurring", "isrecurring", "recurring", "Recurring"}
	frequencyKeys   = []string{"recurringFreq", "recurringfreq", "frequency", "Frequency"}
)

// Lookup returns the first non-empty value among keys.
func (r RawRecord) Lookup(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// Normalize coerces r into a canonical task. It never fails on bad field
// values: they fall back to defaults. Only a blank title rejects the record.
func Normalize(r RawRecord, ref time.Time) (model.Task, bool) {
	title := strings.TrimSpace(r.Lookup(titleKeys...))
	if title == "" {
		return model.Task{}, false
	}

	task := model.Task{
		Title:       title,
		Description: strings.TrimSpace(r.Lookup(descriptionKeys...)),
		Priority:    resolvePriority(r.Lookup(priorityKeys...)),
		Status:      resolveStatus(r.Lookup(statusKeys...)),
		TargetDate:  ResolveDate(r.Lookup(dateKeys...), ref),
		Category:    strings.TrimSpace(r.Lookup(categoryKeys...)),
		CreatedAt:   ref,
	}
	if task.Status == model.StatusDone {
		at := ref
		task.CompletedAt = &at
	}

	if recurring, err := strconv.ParseBool(strings.TrimSpace(r.Lookup(recurringKeys...))); err == nil && recurring {
		freq := model.Frequency(strings.ToLower(strings.TrimSpace(r.Lookup(frequencyKeys...))))
		if freq.Valid() {
			task.IsRecurring = true
			task.RecurringFreq = freq
		}
	}

	return task, true
}

func resolvePriority(raw string) model.Priority {
	p := model.Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return model.PriorityMedium
	}
	return p
}

func resolveStatus(raw string) model.Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), "-")
	status := model.Status(s)
	if !status.Valid() {
		return model.StatusTodo
	}
	return status
}

// ResolveDate parses raw leniently and returns the calendar day it names,
// or the day of ref when raw is empty or unparseable.
func ResolveDate(raw string, ref time.Time) model.Date {
	if d, ok := ParseDateInput(raw, ref); ok {
		return d
	}
	return Today(ref)
}

// ParseDateInput parses a user-supplied date. Besides YYYY-MM-DD it accepts
// common written forms, resolved in ref's location.
func ParseDateInput(raw string, ref time.Time) (model.Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if d, ok := model.ParseDate(raw); ok {
		return d, true
	}
	for _, layout := range extraDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, ref.Location()); err == nil {
			return model.DateOf(t), true
		}
	}
	if !hasDatePart(raw) {
		return "", false
	}
	t, err := now.With(ref).Parse(raw)
	if err != nil {
		return "", false
	}
	return model.DateOf(t), true
}

// datePart matches digits joined by a date separator, or a month name.
var datePart = regexp.MustCompile(`(?i)\d[-/.]\d|\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

// hasDatePart reports whether raw names a day. jinzhu/now reads a bare
// number or a clock time as today, which is never what the user meant.
func hasDatePart(raw string) bool {
	return datePart.MatchString(raw)
}

// Layouts jinzhu/now doesn't cover.
var extraDateLayouts = []string{
	time.RFC3339,
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02.01.2006",
}
