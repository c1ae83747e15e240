package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func TestNormalizeCSVStyleRecord(t *testing.T) {
	rec := RawRecord{"name": "Buy milk", "priority": "low", "status": "todo", "due": "2025-01-01"}

	task, ok := Normalize(rec, ref)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, model.PriorityLow, task.Priority)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.Date("2025-01-01"), task.TargetDate)
	assert.Equal(t, ref, task.CreatedAt)
	assert.Nil(t, task.CompletedAt)
}

func TestNormalizeTitleSynonyms(t *testing.T) {
	for _, key := range []string{"title", "Title", "name", "Name"} {
		task, ok := Normalize(RawRecord{key: "  Write report "}, ref)
		require.True(t, ok, key)
		assert.Equal(t, "Write report", task.Title, key)
	}

	_, ok := Normalize(RawRecord{"TITLE": "shouting"}, ref)
	assert.False(t, ok, "only the listed case variants are recognized")
}

func TestNormalizeRejectsBlankTitle(t *testing.T) {
	for _, rec := range []RawRecord{{}, {"title": "   "}, {"description": "no title"}} {
		_, ok := Normalize(rec, ref)
		assert.False(t, ok)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	task, ok := Normalize(RawRecord{"title": "x", "priority": "urgent", "status": "blocked", "date": "someday"}, ref)
	require.True(t, ok)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.Date("2025-01-15"), task.TargetDate)
	assert.Empty(t, task.Description)
	assert.Empty(t, task.Category)
	assert.False(t, task.IsRecurring)
}

func TestNormalizeStatusAndPriorityCasing(t *testing.T) {
	task, ok := Normalize(RawRecord{"Title": "x", "Priority": "HIGH", "Status": "In Progress"}, ref)
	require.True(t, ok)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, model.StatusInProgress, task.Status)
}

func TestNormalizeDoneStampsCompletedAt(t *testing.T) {
	task, ok := Normalize(RawRecord{"title": "x", "status": "Done"}, ref)
	require.True(t, ok)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, ref, *task.CompletedAt)
}

func TestNormalizeDateSynonymOrder(t *testing.T) {
	rec := RawRecord{"title": "x", "due": "2025-03-01", "targetDate": "2025-02-01"}
	task, _ := Normalize(rec, ref)
	assert.Equal(t, model.Date("2025-02-01"), task.TargetDate)

	rec = RawRecord{"title": "x", "target date": "2025-04-01"}
	task, _ = Normalize(rec, ref)
	assert.Equal(t, model.Date("2025-04-01"), task.TargetDate)
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Date
	}{
		{"2025-06-30", "2025-06-30"},
		{"2025-06-30T22:15:00Z", "2025-06-30"},
		{"Jun 30, 2025", "2025-06-30"},
		{"6/30/2025", "2025-06-30"},
		{"", "2025-01-15"},
		{"not a date", "2025-01-15"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveDate(tt.raw, ref), "raw %q", tt.raw)
	}
}

func TestNormalizeRecurrenceFields(t *testing.T) {
	task, ok := Normalize(RawRecord{"title": "x", "isRecurring": "true", "recurringFreq": "Weekly"}, ref)
	require.True(t, ok)
	assert.True(t, task.IsRecurring)
	assert.Equal(t, model.FreqWeekly, task.RecurringFreq)

	task, _ = Normalize(RawRecord{"title": "x", "isRecurring": "true", "recurringFreq": "hourly"}, ref)
	assert.False(t, task.IsRecurring, "an unknown frequency leaves the task one-off")
	assert.Empty(t, task.RecurringFreq)
}

func TestParseDateInputRejectsGarbage(t *testing.T) {
	d, ok := ParseDateInput(" 2025-03-09 ", ref)
	assert.True(t, ok)
	assert.Equal(t, model.Date("2025-03-09"), d)

	for _, raw := range []string{"", "   ", "someday"} {
		_, ok := ParseDateInput(raw, ref)
		assert.False(t, ok, "raw %q", raw)
	}
}

func TestParseDateInputRequiresDay(t *testing.T) {
	for _, raw := range []string{"3", "10:30", "10:30:15", "2025"} {
		_, ok := ParseDateInput(raw, ref)
		assert.False(t, ok, "raw %q", raw)
	}
	assert.Equal(t, Today(ref), ResolveDate("10:30", ref))

	cases := map[string]model.Date{
		"2025-2-1":         "2025-02-01",
		"2025-02-01 10:30": "2025-02-01",
		"Feb 3, 2025":      "2025-02-03",
		"3 Feb 2025":       "2025-02-03",
		"2/3/2025":         "2025-02-03",
		"03.02.2025":       "2025-02-03",
	}
	for raw, want := range cases {
		d, ok := ParseDateInput(raw, ref)
		if assert.True(t, ok, "raw %q", raw) {
			assert.Equal(t, want, d, "raw %q", raw)
		}
	}
}
