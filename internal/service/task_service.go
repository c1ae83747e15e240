package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow/internal/backend"
	"taskflow/internal/codec"
	"taskflow/internal/model"
	"taskflow/internal/planner"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrAmbiguousID   = errors.New("task id prefix matches more than one task")
	ErrTitleRequired = errors.New("please enter a task title")
	ErrDateRequired  = errors.New("please select a target date")
	ErrInvalidDate   = errors.New("target date not recognized")
)

// TaskInput is the manual add/edit form.
type TaskInput struct {
	Title         string
	Description   string
	Priority      model.Priority
	Status        model.Status
	TargetDate    string
	Category      string
	IsRecurring   bool
	RecurringFreq model.Frequency
}

// Completion describes what CompleteTask did.
type Completion struct {
	Task model.Task
	Op   *backend.Op
	// Next is the new target date of a recurring task; empty otherwise.
	Next model.Date
}

func (c Completion) RolledOver() bool {
	return c.Next != ""
}

// TaskService is the mutation API used by the bot and the CLI. Each call
// works on the caller's current session.
type TaskService struct {
	now func() time.Time
}

func NewTaskService(now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{now: now}
}

func (s *TaskService) Now() time.Time {
	return s.now()
}

// AddTask validates input and creates the task.
func (s *TaskService) AddTask(ctx context.Context, sess *backend.Session, input TaskInput) (*backend.Op, error) {
	now := s.now()
	task, err := s.taskFromInput(input, now)
	if err != nil {
		return nil, err
	}
	task.CreatedAt = now
	if task.Status == model.StatusDone {
		task.CompletedAt = &now
	}
	return sess.Create(ctx, task), nil
}

// EditTask overwrites the editable fields of the task matching ref.
func (s *TaskService) EditTask(ctx context.Context, sess *backend.Session, ref string, input TaskInput) (*backend.Op, error) {
	existing, err := s.Resolve(sess, ref)
	if err != nil {
		return nil, err
	}
	now := s.now()
	task, err := s.taskFromInput(input, now)
	if err != nil {
		return nil, err
	}

	patch := model.Patch{
		Title:         &task.Title,
		Description:   &task.Description,
		Priority:      &task.Priority,
		Status:        &task.Status,
		TargetDate:    &task.TargetDate,
		Category:      &task.Category,
		IsRecurring:   &task.IsRecurring,
		RecurringFreq: &task.RecurringFreq,
	}
	switch {
	case task.Status != model.StatusDone:
		patch.ClearCompletedAt = true
	case existing.Status != model.StatusDone || existing.CompletedAt == nil:
		patch.CompletedAt = &now
	}
	return sess.Update(ctx, existing.ID, patch), nil
}

// CompleteTask finishes a task. A recurring task is rolled over to its next
// occurrence and reset to todo instead of being marked done.
func (s *TaskService) CompleteTask(ctx context.Context, sess *backend.Session, ref string) (Completion, error) {
	task, err := s.Resolve(sess, ref)
	if err != nil {
		return Completion{}, err
	}

	if task.IsRecurring {
		next := planner.NextOccurrence(task.TargetDate, task.RecurringFreq)
		status := model.StatusTodo
		op := sess.Update(ctx, task.ID, model.Patch{TargetDate: &next, Status: &status})
		return Completion{Task: task, Op: op, Next: next}, nil
	}

	now := s.now()
	status := model.StatusDone
	op := sess.Update(ctx, task.ID, model.Patch{Status: &status, CompletedAt: &now})
	return Completion{Task: task, Op: op}, nil
}

// ReopenTask moves a task back to in-progress and clears completedAt.
func (s *TaskService) ReopenTask(ctx context.Context, sess *backend.Session, ref string) (*backend.Op, error) {
	task, err := s.Resolve(sess, ref)
	if err != nil {
		return nil, err
	}
	status := model.StatusInProgress
	return sess.Update(ctx, task.ID, model.Patch{Status: &status, ClearCompletedAt: true}), nil
}

func (s *TaskService) DeleteTask(ctx context.Context, sess *backend.Session, ref string) (model.Task, *backend.Op, error) {
	task, err := s.Resolve(sess, ref)
	if err != nil {
		return model.Task{}, nil, err
	}
	return task, sess.Delete(ctx, task.ID), nil
}

// Resolve finds a task by full id or unique id prefix.
func (s *TaskService) Resolve(sess *backend.Session, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, ErrTaskNotFound
	}
	if t, ok := sess.Find(ref); ok {
		return t, nil
	}

	var found []model.Task
	for _, t := range sess.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
	}
}

// PreviewImport parses a file without writing anything.
func (s *TaskService) PreviewImport(name, content string) (codec.Result, error) {
	return codec.Import(name, content, s.now())
}

// ImportTasks creates previously parsed tasks in one batch.
func (s *TaskService) ImportTasks(ctx context.Context, sess *backend.Session, tasks []model.Task) *backend.Op {
	return sess.BatchCreate(ctx, tasks)
}

// Import parses and creates in one step.
func (s *TaskService) Import(ctx context.Context, sess *backend.Session, name, content string) (codec.Result, *backend.Op, error) {
	res, err := s.PreviewImport(name, content)
	if err != nil {
		return codec.Result{}, nil, err
	}
	return res, s.ImportTasks(ctx, sess, res.Tasks), nil
}

// Export renders the session's tasks and returns the download file name.
func (s *TaskService) Export(sess *backend.Session, format codec.Format) (string, string, error) {
	content, err := codec.Export(sess.Tasks(), format)
	if err != nil {
		return "", "", err
	}
	return codec.FileName(format), content, nil
}

func (s *TaskService) Board(sess *backend.Session, f planner.Filter) planner.Board {
	return planner.BuildBoard(sess.Tasks(), f, s.now())
}

func (s *TaskService) Stats(sess *backend.Session) planner.Stats {
	return planner.ComputeStats(sess.Tasks(), s.now())
}

func (s *TaskService) taskFromInput(input TaskInput, now time.Time) (model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Task{}, ErrTitleRequired
	}
	if strings.TrimSpace(input.TargetDate) == "" {
		return model.Task{}, ErrDateRequired
	}
	date, ok := planner.ParseDateInput(input.TargetDate, now)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidDate, input.TargetDate)
	}

	task := model.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Status:      input.Status,
		TargetDate:  date,
		Category:    strings.TrimSpace(input.Category),
		IsRecurring: input.IsRecurring,
	}
	if !task.Priority.Valid() {
		task.Priority = model.PriorityMedium
	}
	if !task.Status.Valid() {
		task.Status = model.StatusTodo
	}
	if task.IsRecurring {
		task.RecurringFreq = input.RecurringFreq
		if !task.RecurringFreq.Valid() {
			task.RecurringFreq = model.FreqDaily
		}
	}
	return task, nil
}
