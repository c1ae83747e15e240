package planner

import (
	"sort"
	"strings"
	"time"

	"taskflow/internal/model"
)

// Bucket is a display group for a task.
type Bucket int

const (
	BucketOverdue Bucket = iota
	BucketToday
	BucketThisWeek
	BucketUpcoming
	BucketCompleted
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{BucketOverdue, BucketToday, BucketThisWeek, BucketUpcoming, BucketCompleted}

func (b Bucket) String() string {
	switch b {
	case BucketOverdue:
		return "Overdue"
	case BucketToday:
		return "Today"
	case BucketThisWeek:
		return "This Week"
	case BucketUpcoming:
		return "Upcoming"
	case BucketCompleted:
		return "Completed"
	}
	return "Unknown"
}

// Compare orders tasks for display: open before done, overdue first, then by
// priority rank, then by nearest target day. It returns <0, 0 or >0.
func Compare(a, b model.Task, ref time.Time) int {
	if a.Done() != b.Done() {
		if a.Done() {
			return 1
		}
		return -1
	}
	aOver, bOver := IsOverdue(a, ref), IsOverdue(b, ref)
	if aOver != bOver {
		if aOver {
			return -1
		}
		return 1
	}
	if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
		return d
	}
	ao, bo := DayOffset(a.TargetDate, ref), DayOffset(b.TargetDate, ref)
	switch {
	case ao < bo:
		return -1
	case ao > bo:
		return 1
	}
	return 0
}

// Sort returns a stably sorted copy of tasks.
func Sort(tasks []model.Task, ref time.Time) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], ref) < 0
	})
	return out
}

// Classify places a task in exactly one bucket.
func Classify(t model.Task, ref time.Time) Bucket {
	if t.Done() {
		return BucketCompleted
	}
	if IsOverdue(t, ref) {
		return BucketOverdue
	}
	switch d := DayOffset(t.TargetDate, ref); {
	case d == 0:
		return BucketToday
	case d >= 1 && d <= 7:
		return BucketThisWeek
	}
	return BucketUpcoming
}

// Group is one non-empty bucket of a Board.
type Group struct {
	Bucket Bucket
	Tasks  []model.Task
}

// Board is a filtered, sorted and bucketed task list.
type Board struct {
	Groups []Group
	Total  int
}

// Filter selects tasks. Empty fields match everything.
type Filter struct {
	Status   model.Status
	Priority model.Priority
	Search   string
}

// Match reports whether t passes every set criterion. Search is a
// case-insensitive substring test over title, description and category.
func (f Filter) Match(t model.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	hay := strings.ToLower(t.Title + " " + t.Description + " " + t.Category)
	return strings.Contains(hay, term)
}

// Apply returns the tasks that match f, preserving order.
func (f Filter) Apply(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// BuildBoard filters, sorts and buckets tasks. Empty buckets are omitted.
func BuildBoard(tasks []model.Task, f Filter, ref time.Time) Board {
	sorted := Sort(f.Apply(tasks), ref)

	byBucket := make(map[Bucket][]model.Task)
	for _, t := range sorted {
		b := Classify(t, ref)
		byBucket[b] = append(byBucket[b], t)
	}

	board := Board{Total: len(sorted)}
	for _, b := range Buckets {
		if len(byBucket[b]) > 0 {
			board.Groups = append(board.Groups, Group{Bucket: b, Tasks: byBucket[b]})
		}
	}
	return board
}

// Stats are the header counters of the task list.
type Stats struct {
	Total      int
	Done       int
	InProgress int
	Overdue    int
	Upcoming   int
	Percent    int
}

// ComputeStats counts tasks by state. Upcoming counts open tasks due today or later.
func ComputeStats(tasks []model.Task, ref time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch {
		case t.Done():
			s.Done++
		case t.Status == model.StatusInProgress:
			s.InProgress++
		}
		if IsOverdue(t, ref) {
			s.Overdue++
		}
		if !t.Done() && DayOffset(t.TargetDate, ref) >= 0 {
			s.Upcoming++
		}
	}
	s.Percent = CompletionRate(s.Done, s.Total)
	return s
}

// CompletionRate is round(100*done/total), or 0 for an empty list.
func CompletionRate(done, total int) int {
	if total == 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}
