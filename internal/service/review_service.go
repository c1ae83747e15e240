package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/planner"
)

// TaskLister reads an owner's tasks straight from the remote store.
type TaskLister interface {
	List(ctx context.Context, ownerID string) ([]model.Task, error)
}

// ReviewService builds the weekly review message.
type ReviewService struct {
	tasks TaskLister
}

func NewReviewService(tasks TaskLister) *ReviewService {
	return &ReviewService{tasks: tasks}
}

// WeeklySummaryFor loads ownerID's tasks and renders their review.
func (s *ReviewService) WeeklySummaryFor(ctx context.Context, ownerID string, now time.Time) (string, error) {
	tasks, err := s.tasks.List(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("load tasks for review: %w", err)
	}
	return WeeklySummary(tasks, now), nil
}

// WeeklySummary renders the review of tasks as Telegram HTML.
func WeeklySummary(tasks []model.Task, now time.Time) string {
	r := planner.WeeklyReview(tasks, now)

	var b strings.Builder
	b.WriteString("📊 <b>Weekly review</b>\n")
	b.WriteString(fmt.Sprintf("🗓 %s – %s\n\n", r.WeekStart.Format("Jan 2"), r.WeekEnd.Format("Jan 2, 2006")))

	b.WriteString(fmt.Sprintf("✅ Completed: <b>%d</b>\n", len(r.Completed)))
	b.WriteString(fmt.Sprintf("🆕 Created: <b>%d</b>\n", r.CreatedCount))
	b.WriteString(fmt.Sprintf("⚠️ Overdue: <b>%d</b>\n", len(r.Overdue)))
	b.WriteString(fmt.Sprintf("📌 Active: <b>%d</b>\n", r.ActiveCount))
	b.WriteString(fmt.Sprintf("📈 Completion rate: <b>%d%%</b> (%d of %d)\n", r.CompletionRate, r.DoneCount, r.TotalCount))

	writeSection(&b, "\n🎉 <b>Completed this week</b>\n", "— nothing completed yet\n", r.Completed, nil)
	writeSection(&b, "\n🔥 <b>Overdue</b>\n", "— nothing overdue\n", r.Overdue, func(t model.Task) string {
		return planner.RelativeLabel(t.TargetDate, now)
	})
	writeSection(&b, "\n⏳ <b>Coming up</b>\n", "— nothing due in the next 7 days\n", r.ComingUp, func(t model.Task) string {
		return planner.RelativeLabel(t.TargetDate, now)
	})

	return strings.TrimSpace(b.String())
}

func writeSection(b *strings.Builder, header, empty string, tasks []model.Task, note func(model.Task) string) {
	b.WriteString(header)
	if len(tasks) == 0 {
		b.WriteString(empty)
		return
	}
	for _, t := range tasks {
		b.WriteString("• " + html.EscapeString(strings.TrimSpace(t.Title)))
		if note != nil {
			b.WriteString(fmt.Sprintf(" <i>(%s)</i>", note(t)))
		}
		b.WriteByte('\n')
	}
}
