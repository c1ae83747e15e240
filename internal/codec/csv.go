package codec

import (
	"strings"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/planner"
)

// csvColumns is the fixed export header.
var csvColumns = []string{"title", "description", "priority", "status", "targetDate", "category", "createdAt", "completedAt"}

// ParseCSV reads a header row followed by data rows. Header cells are
// trimmed, lower-cased and stripped of quotes. Rows with fewer fields than
// headers are skipped.
func ParseCSV(content string, now time.Time) Result {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return Result{}
	}

	headers := strings.Split(strings.TrimRight(lines[0], "\r"), ",")
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		headers[i] = strings.NewReplacer(`"`, "", "'", "").Replace(h)
	}

	res := Result{Rows: len(lines) - 1}
	for _, line := range lines[1:] {
		values := SplitCSVLine(strings.TrimRight(line, "\r"))
		if len(values) < len(headers) {
			continue
		}
		rec := make(planner.RawRecord, len(headers))
		for i, h := range headers {
			rec[h] = values[i]
		}
		if task, ok := planner.Normalize(rec, now); ok {
			res.Tasks = append(res.Tasks, task)
		}
	}
	return res
}

// SplitCSVLine splits one line on commas outside quotes. A quote toggles
// quoted mode; a doubled quote inside quoted mode is a literal quote.
// Fields are trimmed.
func SplitCSVLine(line string) []string {
	var (
		fields  []string
		current strings.Builder
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuote && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// ExportCSV renders tasks under the fixed header with every field quoted.
func ExportCSV(tasks []model.Task) string {
	rows := make([]string, 0, len(tasks)+1)
	rows = append(rows, strings.Join(csvColumns, ","))
	for _, t := range tasks {
		values := csvValues(t)
		for i, v := range values {
			values[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		rows = append(rows, strings.Join(values, ","))
	}
	return strings.Join(rows, "\n")
}

func csvValues(t model.Task) []string {
	completed := ""
	if t.CompletedAt != nil {
		completed = t.CompletedAt.Format(time.RFC3339)
	}
	return []string{
		t.Title,
		t.Description,
		string(t.Priority),
		string(t.Status),
		string(t.TargetDate),
		t.Category,
		t.CreatedAt.Format(time.RFC3339),
		completed,
	}
}
