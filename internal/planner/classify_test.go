package planner

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func task(title string, p model.Priority, s model.Status, offset int) model.Task {
	return model.Task{ID: title, Title: title, Priority: p, Status: s, TargetDate: day(offset)}
}

func titles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestSortOrder(t *testing.T) {
	tasks := []model.Task{
		task("done-critical", model.PriorityCritical, model.StatusDone, -5),
		task("low-today", model.PriorityLow, model.StatusTodo, 0),
		task("high-next-week", model.PriorityHigh, model.StatusTodo, 6),
		task("high-tomorrow", model.PriorityHigh, model.StatusInProgress, 1),
		task("low-overdue", model.PriorityLow, model.StatusTodo, -1),
		{ID: "undated", Title: "undated", Priority: model.PriorityHigh, Status: model.StatusTodo},
		task("critical-overdue", model.PriorityCritical, model.StatusTodo, -3),
	}

	got := titles(Sort(tasks, ref))
	assert.Equal(t, []string{
		"critical-overdue",
		"low-overdue",
		"high-tomorrow",
		"high-next-week",
		"undated",
		"low-today",
		"done-critical",
	}, got)
}

func TestSortIsStableAndRepeatable(t *testing.T) {
	tasks := []model.Task{
		task("a", model.PriorityMedium, model.StatusTodo, 3),
		task("b", model.PriorityMedium, model.StatusTodo, 3),
		task("c", model.PriorityMedium, model.StatusDone, 3),
		task("d", model.PriorityMedium, model.StatusTodo, 3),
	}
	once := Sort(tasks, ref)
	twice := Sort(once, ref)
	assert.Equal(t, []string{"a", "b", "d", "c"}, titles(once))
	assert.Equal(t, titles(once), titles(twice))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{
		task("late", model.PriorityLow, model.StatusTodo, 5),
		task("soon", model.PriorityCritical, model.StatusTodo, 1),
	}
	_ = Sort(tasks, ref)
	assert.Equal(t, "late", tasks[0].Title)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		task model.Task
		want Bucket
	}{
		{"overdue", task("x", model.PriorityMedium, model.StatusTodo, -2), BucketOverdue},
		{"today", task("x", model.PriorityMedium, model.StatusTodo, 0), BucketToday},
		{"tomorrow", task("x", model.PriorityMedium, model.StatusTodo, 1), BucketThisWeek},
		{"seven days", task("x", model.PriorityMedium, model.StatusInProgress, 7), BucketThisWeek},
		{"eight days", task("x", model.PriorityMedium, model.StatusTodo, 8), BucketUpcoming},
		{"undated", model.Task{Status: model.StatusTodo}, BucketUpcoming},
		{"done and overdue", task("x", model.PriorityMedium, model.StatusDone, -2), BucketCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.task, ref))
		})
	}
}

func TestBuildBoardPartitionsTasks(t *testing.T) {
	tasks := SeedTasks(ref, func() string { return "" })
	tasks = append(tasks,
		task("far", model.PriorityLow, model.StatusTodo, 30),
		model.Task{Title: "undated", Priority: model.PriorityLow, Status: model.StatusTodo},
	)

	board := BuildBoard(tasks, Filter{}, ref)
	require.Equal(t, len(tasks), board.Total)

	seen := make(map[string]int)
	for _, g := range board.Groups {
		require.NotEmpty(t, g.Tasks)
		for _, tk := range g.Tasks {
			seen[tk.Title]++
			assert.Equal(t, g.Bucket, Classify(tk, ref))
		}
	}
	assert.Len(t, seen, len(tasks))
	for title, n := range seen {
		assert.Equal(t, 1, n, title)
	}

	var order []Bucket
	for _, g := range board.Groups {
		order = append(order, g.Bucket)
	}
	assert.Equal(t, Buckets, order)
}

func TestScenarioOverdueTask(t *testing.T) {
	tk := task("late", model.PriorityMedium, model.StatusTodo, -2)
	assert.True(t, IsOverdue(tk, ref))
	board := BuildBoard([]model.Task{tk}, Filter{}, ref)
	require.Len(t, board.Groups, 1)
	assert.Equal(t, BucketOverdue, board.Groups[0].Bucket)
}

func TestFilter(t *testing.T) {
	bug := model.Task{Title: "Login fails", Description: "Bug in session handling", Priority: model.PriorityHigh, Status: model.StatusTodo}
	other := model.Task{Title: "Groceries", Description: "milk", Category: "Home", Priority: model.PriorityLow, Status: model.StatusDone}
	tagged := model.Task{Title: "Triage", Category: "BUGS", Priority: model.PriorityLow, Status: model.StatusTodo}
	tasks := []model.Task{bug, other, tagged}

	assert.Equal(t, []string{"Login fails", "Triage"}, titles(Filter{Search: "bug"}.Apply(tasks)))
	assert.Equal(t, []string{"Groceries"}, titles(Filter{Status: model.StatusDone}.Apply(tasks)))
	assert.Equal(t, []string{"Groceries", "Triage"}, titles(Filter{Priority: model.PriorityLow}.Apply(tasks)))
	assert.Equal(t, []string{"Triage"}, titles(Filter{Priority: model.PriorityLow, Search: " Bug "}.Apply(tasks)))
	assert.Len(t, Filter{}.Apply(tasks), 3)
	assert.Empty(t, Filter{Search: "nothing"}.Apply(tasks))
}

func TestComputeStats(t *testing.T) {
	tasks := SeedTasks(ref, func() string { return "" })
	s := ComputeStats(tasks, ref)
	assert.Equal(t, Stats{Total: 7, Done: 1, InProgress: 2, Overdue: 2, Upcoming: 4, Percent: 14}, s)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 75, CompletionRate(3, 4))
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 67, CompletionRate(2, 3))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 50, CompletionRate(1, 2))
	assert.Equal(t, 100, CompletionRate(5, 5))
}

func TestSeedTasksCoverage(t *testing.T) {
	n := 0
	tasks := SeedTasks(ref, func() string { n++; return strconv.Itoa(n) })
	require.Len(t, tasks, 7)

	priorities := make(map[model.Priority]bool)
	statuses := make(map[model.Status]bool)
	ids := make(map[string]bool)
	for _, tk := range tasks {
		priorities[tk.Priority] = true
		statuses[tk.Status] = true
		ids[tk.ID] = true
		assert.Equal(t, tk.Done(), tk.CompletedAt != nil, tk.Title)
	}
	assert.Len(t, priorities, 4)
	assert.Len(t, statuses, 3)
	assert.Len(t, ids, 7)
}
