// internal/service/task_service.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"frogpad/internal/models"
	"frogpad/internal/repository"
	"frogpad/internal/week"
)

// TaskService owns the task lifecycle: CRUD, the one-shot vs. weekly
// completion toggle, and the derived weekly progress computations.
type TaskService struct {
	tasks       TaskStore
	completions CompletionStore
	tags        TagStore
	comments    CommentStore
	logger      *zap.Logger

	// now is swapped out in tests for deterministic week boundaries.
	now func() time.Time

	// locks serializes the append+recompute+store sequence per task so two
	// near-simultaneous toggles cannot interleave their ledger writes with
	// the stored-flag update.
	locks taskLocks
}

func NewTaskService(tasks TaskStore, completions CompletionStore, tags TagStore, comments CommentStore, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:       tasks,
		completions: completions,
		tags:        tags,
		comments:    comments,
		logger:      logger,
		now:         time.Now,
	}
}

// ListOptions are the supported task list filters.
type ListOptions struct {
	Size      *string
	Urgency   *string
	Completed *bool
	Due       string // "today", "week", "overdue" or empty
	Tags      []string
	Sort      string // "due" or "created"
	UserID    int64
}

// Create validates the weekly configuration invariant and stores the task.
func (s *TaskService) Create(ctx context.Context, input *repository.TaskInput) (*TaskDetail, error) {
	if input.Title == "" {
		return nil, wrapInvalid("title is required")
	}
	if input.IsWeekly {
		if input.TimesPerWeek == nil || *input.TimesPerWeek < 1 {
			return nil, wrapInvalid("timesPerWeek must be at least 1 for a weekly task")
		}
	} else {
		input.TimesPerWeek = nil
	}

	task, err := s.tasks.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Bool("is_weekly", task.IsWeekly),
	)

	return s.detail(ctx, task, 0)
}

func (s *TaskService) Get(ctx context.Context, id, userID int64) (*TaskDetail, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, taskErr(err)
	}
	return s.detail(ctx, task, userID)
}

// List returns filtered tasks with tags, comments and weekly progress
// embedded. Relative due filters are resolved against the wall clock.
func (s *TaskService) List(ctx context.Context, opts ListOptions) ([]*TaskDetail, error) {
	filter := repository.ListFilter{
		Size:      opts.Size,
		Urgency:   opts.Urgency,
		Completed: opts.Completed,
		Tags:      opts.Tags,
		Sort:      opts.Sort,
	}

	now := s.now()
	switch opts.Due {
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
		filter.DueFrom, filter.DueTo = &start, &end
	case "week":
		start, end := week.Window(now)
		filter.DueFrom, filter.DueTo = &start, &end
	case "overdue":
		filter.OverdueBefore = &now
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	tagsByTask, err := s.tags.ListForTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentsByTask, err := s.comments.ListForTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	start, end := week.Window(now)
	details := make([]*TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		var weeklyCount *int
		if task.IsWeekly {
			count, err := s.completions.CountInWindow(ctx, task.ID, opts.UserID, start, end)
			if err != nil {
				return nil, err
			}
			weeklyCount = &count
		}
		details = append(details, newTaskDetail(task, tagsByTask[task.ID], commentsByTask[task.ID], weeklyCount))
	}
	return details, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, input *repository.TaskUpdateInput, userID int64) (*TaskDetail, error) {
	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, taskErr(err)
	}

	if input.TimesPerWeek != nil && *input.TimesPerWeek < 1 {
		return nil, wrapInvalid("timesPerWeek must be at least 1")
	}
	if input.IsWeekly != nil && *input.IsWeekly {
		hasTarget := input.TimesPerWeek != nil || current.TimesPerWeek.Valid
		if !hasTarget {
			return nil, wrapInvalid("timesPerWeek is required for a weekly task")
		}
	}

	task, err := s.tasks.Update(ctx, id, input)
	if err != nil {
		return nil, taskErr(err)
	}
	return s.detail(ctx, task, userID)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return taskErr(err)
	}
	s.logger.Info("task deleted", zap.Int64("task_id", id))
	return nil
}

// ToggleCompletion implements the completion state machine.
//
// Non-weekly tasks are a plain boolean flip. For weekly tasks, marking
// complete appends one ledger entry and then overwrites the stored flag with
// the recomputed "target met this week" signal; the flag is never blindly set
// to true. Un-marking clears the flag but leaves the ledger untouched, so
// completion history is never retracted.
func (s *TaskService) ToggleCompletion(ctx context.Context, taskID int64, completed bool, userID int64) (*ToggleResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, taskErr(err)
	}

	if !task.IsWeekly {
		var completedAt *time.Time
		if completed {
			now := s.now()
			completedAt = &now
		}
		updated, err := s.tasks.SetCompleted(ctx, taskID, completed, completedAt)
		if err != nil {
			return nil, taskErr(err)
		}
		detail, err := s.detail(ctx, updated, userID)
		if err != nil {
			return nil, err
		}
		return &ToggleResult{Task: detail}, nil
	}

	unlock := s.locks.lock(taskID)
	defer unlock()

	now := s.now()
	recorded := false
	if completed {
		if _, err := s.completions.Record(ctx, taskID, userID, now); err != nil {
			return nil, err
		}
		recorded = true
	}

	start, end := week.Window(now)
	count, err := s.completions.CountInWindow(ctx, taskID, userID, start, end)
	if err != nil {
		return nil, err
	}

	stored := false
	if completed {
		stored = task.Target() > 0 && count >= task.Target()
	}

	var completedAt *time.Time
	if stored {
		completedAt = &now
	}
	updated, err := s.tasks.SetCompleted(ctx, taskID, stored, completedAt)
	if err != nil {
		return nil, taskErr(err)
	}

	s.logger.Info("weekly toggle",
		zap.Int64("task_id", taskID),
		zap.Int64("user_id", userID),
		zap.Bool("recorded", recorded),
		zap.Int("week_count", count),
		zap.Bool("complete_for_week", stored),
	)

	tags, err := s.tags.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{
		Task:     newTaskDetail(updated, tags, comments, &count),
		Recorded: recorded,
	}, nil
}

// WeeklyCompletionCount counts this week's ledger entries for the task.
func (s *TaskService) WeeklyCompletionCount(ctx context.Context, taskID, userID int64) (int, error) {
	start, end := week.Window(s.now())
	return s.completions.CountInWindow(ctx, taskID, userID, start, end)
}

// IsCompleteForWeek reports whether the weekly target is met. A missing or
// non-weekly task yields false rather than an error.
func (s *TaskService) IsCompleteForWeek(ctx context.Context, taskID, userID int64) (bool, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if task.Target() == 0 {
		return false, nil
	}

	count, err := s.WeeklyCompletionCount(ctx, taskID, userID)
	if err != nil {
		return false, err
	}
	return count >= task.Target(), nil
}

// WeeklyStats builds the 4-week history view: the current week and the three
// preceding ones, oldest first, from a single bulk ledger fetch.
func (s *TaskService) WeeklyStats(ctx context.Context, taskID, userID int64) (*WeeklyStatsView, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, taskErr(err)
	}
	if task.Target() == 0 {
		return nil, ErrNotWeekly
	}

	now := s.now()
	currentStart, currentEnd := week.Window(now)
	oldestStart := currentStart.AddDate(0, 0, -21)

	entries, err := s.completions.ListInWindow(ctx, taskID, userID, oldestStart, currentEnd)
	if err != nil {
		return nil, err
	}

	weeks := make([]WeekStats, 0, 4)
	for i := 3; i >= 0; i-- {
		start := currentStart.AddDate(0, 0, -7*i)
		end := week.End(start)

		completions := 0
		for _, e := range entries {
			if !e.Date.Before(start) && !e.Date.After(end) {
				completions++
			}
		}

		weeks = append(weeks, WeekStats{
			WeekStart:     start,
			WeekEnd:       end,
			Completions:   completions,
			Target:        task.Target(),
			IsCurrentWeek: i == 0,
		})
	}

	var recent []CompletionView
	for _, e := range entries {
		if !e.Date.Before(currentStart) && !e.Date.After(currentEnd) {
			recent = append(recent, CompletionView{ID: e.ID, Date: e.Date})
		}
	}

	current := weeks[len(weeks)-1]
	return &WeeklyStatsView{
		TaskID:                 taskID,
		UserID:                 userID,
		IsWeekly:               true,
		TimesPerWeek:           task.Target(),
		CurrentWeekCompletions: current.Completions,
		IsCompleteForWeek:      current.Completions >= task.Target(),
		Weeks:                  weeks,
		RecentCompletions:      recent,
	}, nil
}

// Tags lists every known tag.
func (s *TaskService) Tags(ctx context.Context) ([]TagView, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, TagView{ID: t.ID, Name: t.Name})
	}
	return views, nil
}

// UpsertTag creates a tag by name if it does not already exist.
func (s *TaskService) UpsertTag(ctx context.Context, name string) (*TagView, error) {
	if name == "" {
		return nil, wrapInvalid("name is required")
	}
	tag, err := s.tags.Upsert(ctx, name)
	if err != nil {
		return nil, err
	}
	return &TagView{ID: tag.ID, Name: tag.Name}, nil
}

// Comments returns a task's comment thread, oldest first.
func (s *TaskService) Comments(ctx context.Context, taskID int64) ([]CommentView, error) {
	comments, err := s.comments.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{ID: c.ID, TaskID: c.TaskID, Text: c.Text, Timestamp: c.Timestamp})
	}
	return views, nil
}

// AddComment appends to a task's comment thread.
func (s *TaskService) AddComment(ctx context.Context, taskID int64, text string) (*CommentView, error) {
	if text == "" {
		return nil, wrapInvalid("text is required")
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, taskErr(err)
	}

	comment, err := s.comments.Create(ctx, taskID, text)
	if err != nil {
		return nil, err
	}
	return &CommentView{ID: comment.ID, TaskID: comment.TaskID, Text: comment.Text, Timestamp: comment.Timestamp}, nil
}

func (s *TaskService) detail(ctx context.Context, task *models.Task, userID int64) (*TaskDetail, error) {
	tags, err := s.tags.ListForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	var weeklyCount *int
	if task.IsWeekly {
		count, err := s.WeeklyCompletionCount(ctx, task.ID, userID)
		if err != nil {
			return nil, err
		}
		weeklyCount = &count
	}
	return newTaskDetail(task, tags, comments, weeklyCount), nil
}

// taskLocks hands out one mutex per task id.
type taskLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func (l *taskLocks) lock(id int64) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[int64]*sync.Mutex)
	}
	lk, ok := l.m[id]
	if !ok {
		lk = &sync.Mutex{}
		l.m[id] = lk
	}
	l.mu.Unlock()

	lk.Lock()
	return lk.Unlock
}
