package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"taskflow/internal/model"
	"taskflow/internal/planner"
	"taskflow/internal/service"
)

const (
	shortIDLen = 8
	titleWidth = 48
)

// theme holds the styles used for terminal output.
type theme struct {
	Title   lipgloss.Style
	Bucket  lipgloss.Style
	Subtle  lipgloss.Style
	Overdue lipgloss.Style
	Done    lipgloss.Style
	Success lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Bucket:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Done:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

// plainTheme renders text unchanged.
func plainTheme() theme {
	return theme{
		Title:   lipgloss.NewStyle(),
		Bucket:  lipgloss.NewStyle(),
		Subtle:  lipgloss.NewStyle(),
		Overdue: lipgloss.NewStyle(),
		Done:    lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
	}
}

// currentTheme is plain when --no-color is set or stdout is not a terminal.
func currentTheme() theme {
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		return plainTheme()
	}
	return defaultTheme()
}

var priorityMarks = map[model.Priority]string{
	model.PriorityCritical: "!!!",
	model.PriorityHigh:     "!!",
	model.PriorityMedium:   "!",
	model.PriorityLow:      "·",
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// renderBoard prints the stats header and one section per non-empty bucket.
func renderBoard(th theme, board planner.Board, stats planner.Stats, now time.Time) string {
	var b strings.Builder
	b.WriteString(th.Title.Render("Tasks"))
	b.WriteString(" ")
	b.WriteString(th.Subtle.Render(fmt.Sprintf("%d total · %d done · %d overdue · %d%% complete",
		stats.Total, stats.Done, stats.Overdue, stats.Percent)))
	b.WriteString("\n")

	if board.Total == 0 {
		b.WriteString("\nNo tasks found. Create one with: taskflow add \"Your task\" --date today\n")
		return b.String()
	}

	for _, g := range board.Groups {
		b.WriteString("\n")
		b.WriteString(th.Bucket.Render(fmt.Sprintf("%s (%d)", g.Bucket, len(g.Tasks))))
		b.WriteString("\n")
		for _, t := range g.Tasks {
			b.WriteString("  ")
			b.WriteString(renderTask(th, t, now))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderTask renders one line: short id, priority mark, title and the
// relative due label.
func renderTask(th theme, t model.Task, now time.Time) string {
	mark := priorityMarks[t.Priority]
	if mark == "" {
		mark = priorityMarks[model.PriorityMedium]
	}
	title := truncate(t.Title, titleWidth)

	parts := []string{th.Subtle.Render(shortID(t.ID)), fmt.Sprintf("%-3s", mark)}
	switch {
	case t.Done():
		parts = append(parts, th.Done.Render("✓ "+title))
	default:
		parts = append(parts, title)
	}

	var meta []string
	if !t.Done() {
		label := planner.RelativeLabel(t.TargetDate, now)
		if planner.IsOverdue(t, now) {
			label = th.Overdue.Render(label)
		}
		if label != "" {
			meta = append(meta, label)
		}
	}
	if t.Status == model.StatusInProgress {
		meta = append(meta, "in progress")
	}
	if t.Category != "" {
		meta = append(meta, "#"+t.Category)
	}
	if t.IsRecurring {
		meta = append(meta, "↻ "+string(t.RecurringFreq))
	}
	if len(meta) > 0 {
		parts = append(parts, th.Subtle.Render("("+strings.Join(meta, " · ")+")"))
	}
	return strings.Join(parts, " ")
}

// renderReview prints the weekly review of the session's tasks.
func renderReview(th theme, r planner.Review, now time.Time) string {
	var b strings.Builder
	b.WriteString(th.Title.Render("Weekly review"))
	b.WriteString(" ")
	b.WriteString(th.Subtle.Render(fmt.Sprintf("%s – %s",
		r.WeekStart.Format("Jan 2"), r.WeekEnd.Format("Jan 2, 2006"))))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Completed this week: %d\n", len(r.Completed)))
	b.WriteString(fmt.Sprintf("Created this week:   %d\n", r.CreatedCount))
	b.WriteString(fmt.Sprintf("Active: %d · Done: %d · Completion: %d%%\n", r.ActiveCount, r.DoneCount, r.CompletionRate))

	section := func(header string, tasks []model.Task, empty string) {
		b.WriteString("\n")
		b.WriteString(th.Bucket.Render(fmt.Sprintf("%s (%d)", header, len(tasks))))
		b.WriteString("\n")
		if len(tasks) == 0 {
			b.WriteString("  " + th.Subtle.Render(empty) + "\n")
			return
		}
		for _, t := range tasks {
			b.WriteString("  ")
			b.WriteString(renderTask(th, t, now))
			b.WriteString("\n")
		}
	}
	section("Completed", r.Completed, "Nothing completed yet.")
	section("Overdue", r.Overdue, "Nothing overdue.")
	section("Coming up", r.ComingUp, "Nothing due in the next 7 days.")
	return b.String()
}

func completionMessage(th theme, c service.Completion) string {
	title := truncate(c.Task.Title, titleWidth)
	if c.RolledOver() {
		return th.Success.Render(fmt.Sprintf("Rescheduled %q for %s", title, planner.FormatDate(c.Next, time.UTC)))
	}
	return th.Success.Render(fmt.Sprintf("Completed %q", title))
}
