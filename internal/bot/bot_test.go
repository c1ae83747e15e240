package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/backend"
	"taskflow/internal/codec"
	"taskflow/internal/model"
	"taskflow/internal/planner"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

var now = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("status:done  priority:HIGH release notes")
	require.NoError(t, err)
	assert.Equal(t, planner.Filter{Status: model.StatusDone, Priority: model.PriorityHigh, Search: "release notes"}, f)

	f, err = parseFilter("")
	require.NoError(t, err)
	assert.Equal(t, planner.Filter{}, f)

	_, err = parseFilter("status:blocked")
	assert.ErrorContains(t, err, "unknown status")
	_, err = parseFilter("priority:urgent")
	assert.ErrorContains(t, err, "unknown priority")
}

func TestFormatTask(t *testing.T) {
	task := model.Task{
		ID: "0123456789abcdef", Title: "fix <login>", Priority: model.PriorityCritical,
		Status: model.StatusInProgress, TargetDate: "2025-01-13", Category: "Bug Fix",
		IsRecurring: true, RecurringFreq: model.FreqWeekly, Description: "Users get logged out",
	}
	out := formatTask(task, now)
	assert.Contains(t, out, "🔴 <code>01234567</code> Fix &lt;login&gt; <i>(Bug Fix)</i>")
	assert.Contains(t, out, "⏰ 2 days overdue · ▶️ in progress · 🔁 weekly")
	assert.Contains(t, out, "📝 Users get logged out")

	done := model.Task{ID: "x", Title: "shipped", Status: model.StatusDone, TargetDate: "2025-01-10"}
	out = formatTask(done, now)
	assert.Contains(t, out, "<s>Shipped</s>")
	assert.NotContains(t, out, "overdue")
}

func TestRenderBoard(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Title: "late", Status: model.StatusTodo, TargetDate: "2025-01-13"},
		{ID: "b", Title: "today", Status: model.StatusTodo, TargetDate: "2025-01-15"},
		{ID: "c", Title: "done", Status: model.StatusDone, TargetDate: "2025-01-15"},
	}
	board := planner.BuildBoard(tasks, planner.Filter{}, now)
	text, rows := renderBoard(board, planner.ComputeStats(tasks, now), now, true)

	assert.Contains(t, text, "⏳ <i>syncing…</i>")
	assert.Contains(t, text, "3 total · 1 done · 0 in progress · 1 overdue · 33% complete")
	assert.Less(t, strings.Index(text, "Overdue"), strings.Index(text, "Today"))
	assert.Less(t, strings.Index(text, "Today"), strings.Index(text, "Completed"))
	require.Len(t, rows, 3)
	assert.Equal(t, cbCompletePrefix+"a", *rows[0][0].CallbackData)
	assert.Equal(t, cbReopenPrefix+"c", *rows[2][0].CallbackData)
	assert.Equal(t, cbDeletePrefix+"c", *rows[2][1].CallbackData)

	text, rows = renderBoard(planner.Board{}, planner.Stats{}, now, false)
	assert.Contains(t, text, "No tasks match")
	assert.Nil(t, rows)
}

func TestRenderBoardCapsListing(t *testing.T) {
	var tasks []model.Task
	for i := 0; i < maxListed+5; i++ {
		tasks = append(tasks, model.Task{ID: fmt.Sprint(i), Title: "t", Status: model.StatusTodo, TargetDate: "2025-01-15"})
	}
	board := planner.BuildBoard(tasks, planner.Filter{}, now)
	text, rows := renderBoard(board, planner.ComputeStats(tasks, now), now, false)
	assert.Len(t, rows, maxListed)
	assert.Contains(t, text, "…and 5 more")
}

func TestFormatImportPreview(t *testing.T) {
	res := codec.Result{Rows: 25}
	for i := 0; i < 23; i++ {
		res.Tasks = append(res.Tasks, model.Task{Title: fmt.Sprintf("task %d", i), Priority: model.PriorityLow, Status: model.StatusTodo, TargetDate: "2025-02-01"})
	}
	out := formatImportPreview("tasks.csv", res)
	assert.Contains(t, out, "23 tasks ready to import (2 rows skipped)")
	assert.Contains(t, out, "1. Task 0 · low · todo · 2025-02-01")
	assert.Contains(t, out, "20. Task 19")
	assert.NotContains(t, out, "21. ")
	assert.Contains(t, out, "…and 3 more")
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&backend.OpError{Op: backend.OpCreate, Err: errors.New("denied")}, "⚠️ failed to save task: denied"},
		{fmt.Errorf("x: %w", service.ErrTaskNotFound), "Task not found"},
		{service.ErrAmbiguousID, "matches several tasks"},
		{codec.ErrUnsupportedFormat, "Unsupported file type"},
		{codec.ErrNoValidTasks, "No valid tasks found in file."},
		{codec.ErrNothingToExport, "No tasks to export."},
		{errStillSyncing, "Still syncing"},
		{errors.New("<boom>"), "Error: &lt;boom&gt;"},
	}
	for _, tt := range tests {
		assert.Contains(t, errorText(tt.err), tt.want)
	}
}

func TestCompletionText(t *testing.T) {
	rolled := service.Completion{Task: model.Task{Title: "standup"}, Next: "2025-01-20"}
	assert.Equal(t, "🔁 «Standup» rescheduled for Jan 20, 2025.", completionText(rolled))
	assert.Equal(t, "🎉 «Standup» completed!", completionText(service.Completion{Task: model.Task{Title: "standup"}}))
}

func TestDateChoice(t *testing.T) {
	d, ok := dateChoice("Today", now)
	require.True(t, ok)
	assert.Equal(t, model.Date("2025-01-15"), d)

	d, ok = dateChoice("tomorrow", now)
	require.True(t, ok)
	assert.Equal(t, model.Date("2025-01-16"), d)

	d, ok = dateChoice("2025-11-30", now)
	require.True(t, ok)
	assert.Equal(t, model.Date("2025-11-30"), d)

	_, ok = dateChoice("next blue moon", now)
	assert.False(t, ok)
}

func TestParseRecurrence(t *testing.T) {
	recurring, freq, ok := parseRecurrence("Weekdays")
	assert.True(t, ok)
	assert.True(t, recurring)
	assert.Equal(t, model.FreqWeekdays, freq)

	recurring, _, ok = parseRecurrence(btnOnce)
	assert.True(t, ok)
	assert.False(t, recurring)

	_, _, ok = parseRecurrence("yearly")
	assert.False(t, ok)
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Hello", shortTitle(" hello ", 10))
	assert.Equal(t, "Abcd…", shortTitle("abcdefgh", 5))
	assert.Equal(t, "Two lines", shortTitle("two\nlines", 20))
}

func TestSessionsFollowSignIn(t *testing.T) {
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	remote := repository.NewDocumentStore(db)
	t.Cleanup(remote.Close)
	sessions := NewSessions(repository.NewKVStore(db), remote)
	defer sessions.Close()

	user := model.User{TelegramID: 42}
	assert.Equal(t, backend.Identity{UserID: "42", Anonymous: true}, IdentityOf(user))

	local, err := sessions.For(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, backend.ModeLocal, local.Mode())
	assert.Len(t, local.Tasks(), 7, "a new anonymous user starts with sample tasks")

	again, err := sessions.For(ctx, user)
	require.NoError(t, err)
	assert.Same(t, local, again)

	user.SignedIn = true
	synced, err := sessions.For(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, backend.ModeRemote, synced.Mode())
	assert.True(t, local.Closed(), "the anonymous session is torn down")
	assert.Empty(t, synced.Tasks())

	require.NoError(t, synced.Create(ctx, model.Task{Title: "synced", CreatedAt: now}).Wait(ctx))
	require.Eventually(t, func() bool { return len(synced.Tasks()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, sessions.Syncing(42))

	user.SignedIn = false
	back, err := sessions.Switch(ctx, user)
	require.NoError(t, err)
	assert.True(t, synced.Closed())
	assert.Len(t, back.Tasks(), 7, "device tasks are still there")
}

func TestReadLimited(t *testing.T) {
	got, err := readLimited(strings.NewReader("title\nBuy milk\n"), 64)
	require.NoError(t, err)
	assert.Equal(t, "title\nBuy milk\n", got)

	got, err = readLimited(strings.NewReader(strings.Repeat("x", 64)), 64)
	require.NoError(t, err)
	assert.Len(t, got, 64)

	_, err = readLimited(strings.NewReader(strings.Repeat("x", 65)), 64)
	assert.ErrorIs(t, err, errFileTooLarge)
}
