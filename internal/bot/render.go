package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/backend"
	"taskflow/internal/codec"
	"taskflow/internal/model"
	"taskflow/internal/planner"
	"taskflow/internal/service"
)

const (
	// maxListed caps one /tasks message below Telegram's size limit.
	maxListed = 40
	// previewRows is how many parsed rows an import preview shows.
	previewRows = 20
	shortIDLen  = 8
)

var (
	errStillSyncing = errors.New("still syncing")
	errFileTooLarge = errors.New("file too large")
)

var bucketIcons = map[planner.Bucket]string{
	planner.BucketOverdue:   "🔥",
	planner.BucketToday:     "📌",
	planner.BucketThisWeek:  "📅",
	planner.BucketUpcoming:  "🗓",
	planner.BucketCompleted: "✅",
}

var priorityIcons = map[model.Priority]string{
	model.PriorityCritical: "🔴",
	model.PriorityHigh:     "🟠",
	model.PriorityMedium:   "🟡",
	model.PriorityLow:      "🟢",
}

// parseFilter reads /tasks arguments: "status:done", "priority:high" and
// any remaining words as the search text.
func parseFilter(args string) (planner.Filter, error) {
	var f planner.Filter
	var search []string
	for _, word := range strings.Fields(args) {
		key, value, ok := strings.Cut(word, ":")
		switch {
		case ok && strings.EqualFold(key, "status"):
			f.Status = model.Status(strings.ToLower(value))
			if !f.Status.Valid() {
				return planner.Filter{}, fmt.Errorf("unknown status %q", value)
			}
		case ok && strings.EqualFold(key, "priority"):
			f.Priority = model.Priority(strings.ToLower(value))
			if !f.Priority.Valid() {
				return planner.Filter{}, fmt.Errorf("unknown priority %q", value)
			}
		default:
			search = append(search, word)
		}
	}
	f.Search = strings.Join(search, " ")
	return f, nil
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// formatTask renders one list entry.
func formatTask(t model.Task, now time.Time) string {
	var b strings.Builder
	icon := priorityIcons[t.Priority]
	if icon == "" {
		icon = priorityIcons[model.PriorityMedium]
	}
	title := escape(normalizeTitle(t.Title))
	if t.Done() {
		title = "<s>" + title + "</s>"
	}
	b.WriteString(fmt.Sprintf("%s <code>%s</code> %s", icon, shortID(t.ID), title))
	if t.Category != "" {
		b.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(t.Category)))
	}
	b.WriteByte('\n')

	var meta []string
	if label := planner.RelativeLabel(t.TargetDate, now); label != "" && !t.Done() {
		meta = append(meta, "⏰ "+label)
	}
	if t.Status == model.StatusInProgress {
		meta = append(meta, "▶️ in progress")
	}
	if t.IsRecurring {
		meta = append(meta, "🔁 "+string(t.RecurringFreq))
	}
	if len(meta) > 0 {
		b.WriteString("   " + strings.Join(meta, " · ") + "\n")
	}
	if t.Description != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(shortTitle(t.Description, 80))))
	}
	return b.String()
}

// renderBoard renders the board as HTML with one button row per listed task.
func renderBoard(board planner.Board, stats planner.Stats, now time.Time, syncing bool) (string, [][]tgbotapi.InlineKeyboardButton) {
	var b strings.Builder
	b.WriteString("📋 <b>Your tasks</b>")
	if syncing {
		b.WriteString(" ⏳ <i>syncing…</i>")
	}
	b.WriteByte('\n')
	b.WriteString(fmt.Sprintf("%d total · %d done · %d in progress · %d overdue · %d%% complete\n\n",
		stats.Total, stats.Done, stats.InProgress, stats.Overdue, stats.Percent))

	if board.Total == 0 {
		b.WriteString("No tasks match. Add one with /newtask.")
		return b.String(), nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	listed := 0
	for _, g := range board.Groups {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> (%d)\n", bucketIcons[g.Bucket], g.Bucket, len(g.Tasks)))
		for _, t := range g.Tasks {
			if listed == maxListed {
				break
			}
			listed++
			b.WriteString(formatTask(t, now))
			rows = append(rows, taskButtons(t))
		}
		b.WriteByte('\n')
	}
	if listed < board.Total {
		b.WriteString(fmt.Sprintf("…and %d more. Narrow the list with /tasks &lt;search&gt;.", board.Total-listed))
	}
	return strings.TrimSpace(b.String()), rows
}

func taskButtons(t model.Task) []tgbotapi.InlineKeyboardButton {
	if t.Done() {
		return tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ "+shortTitle(t.Title, 24), cbReopenPrefix+t.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+t.ID),
		)
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(t.Title, 24), cbCompletePrefix+t.ID),
		tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+t.ID),
	)
}

func formatStats(s planner.Stats) string {
	return fmt.Sprintf("📈 <b>Progress</b>\n"+
		"• Total: %d\n• Done: %d\n• In progress: %d\n• Overdue: %d\n• Upcoming: %d\n• Completion: %d%%",
		s.Total, s.Done, s.InProgress, s.Overdue, s.Upcoming, s.Percent)
}

// formatImportPreview lists the first parsed rows before the user confirms.
func formatImportPreview(name string, res codec.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📥 <b>Import preview</b> · %s\n", escape(name)))
	b.WriteString(fmt.Sprintf("%d tasks ready to import", len(res.Tasks)))
	if dropped := res.Dropped(); dropped > 0 {
		b.WriteString(fmt.Sprintf(" (%d rows skipped)", dropped))
	}
	b.WriteString("\n\n")
	for i, t := range res.Tasks {
		if i == previewRows {
			b.WriteString(fmt.Sprintf("…and %d more\n", len(res.Tasks)-previewRows))
			break
		}
		b.WriteString(fmt.Sprintf("%d. %s · %s · %s · %s\n", i+1,
			escape(shortTitle(t.Title, 40)), t.Priority, t.Status, t.TargetDate))
	}
	return strings.TrimSpace(b.String())
}

// errorText is the user-facing text for a failed action.
func errorText(err error) string {
	var opErr *backend.OpError
	switch {
	case errors.Is(err, errStillSyncing):
		return "⏳ Still syncing. Your change will show up shortly."
	case errors.As(err, &opErr):
		return "⚠️ " + escape(opErr.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found. Use the id shown in /tasks."
	case errors.Is(err, service.ErrAmbiguousID):
		return "That id matches several tasks. Type a few more characters."
	case errors.Is(err, codec.ErrUnsupportedFormat):
		return "Unsupported file type. Please use CSV or JSON."
	case errors.Is(err, codec.ErrNoValidTasks):
		return "No valid tasks found in file."
	case errors.Is(err, codec.ErrNothingToExport):
		return "No tasks to export."
	case errors.Is(err, backend.ErrRemoteUnavailable):
		return "Sync is not available right now. Use /signout to keep tasks on this device."
	}
	return "Error: " + escape(err.Error())
}

func completionText(c service.Completion) string {
	title := escape(normalizeTitle(c.Task.Title))
	if c.RolledOver() {
		return fmt.Sprintf("🔁 «%s» rescheduled for %s.", title, planner.FormatDate(c.Next, time.UTC))
	}
	return fmt.Sprintf("🎉 «%s» completed!", title)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}
