// internal/repository/task_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"frogpad/internal/models"
)

const taskColumns = `id, title, description, due_date, size, urgency, completed,
	completed_at, is_weekly, times_per_week, created_at, updated_at`

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, input *TaskInput) (*models.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	var task models.Task
	err = tx.GetContext(ctx, &task, `
		INSERT INTO tasks (title, description, due_date, size, urgency, is_weekly, times_per_week)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+taskColumns,
		input.Title,
		nullString(input.Description),
		nullTime(input.DueDate),
		input.Size,
		input.Urgency,
		input.IsWeekly,
		nullInt(input.TimesPerWeek),
	)
	if err != nil {
		return nil, rollback(tx, fmt.Errorf("insert task: %w", err))
	}

	if err := attachTags(ctx, tx, task.ID, input.Tags); err != nil {
		return nil, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]*models.Task, error) {
	var (
		where []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Size != nil {
		where = append(where, "size = "+arg(*filter.Size))
	}
	if filter.Urgency != nil {
		where = append(where, "urgency = "+arg(*filter.Urgency))
	}
	if filter.Completed != nil {
		where = append(where, "completed = "+arg(*filter.Completed))
	}
	if filter.DueFrom != nil {
		where = append(where, "due_date >= "+arg(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		where = append(where, "due_date <= "+arg(*filter.DueTo))
	}
	if filter.OverdueBefore != nil {
		where = append(where, "due_date < "+arg(*filter.OverdueBefore))
		where = append(where, "completed = false")
	}
	if len(filter.Tags) > 0 {
		placeholders := make([]string, len(filter.Tags))
		for i, name := range filter.Tags {
			placeholders[i] = arg(name)
		}
		where = append(where, fmt.Sprintf(
			`id IN (SELECT tt.task_id FROM task_tags tt JOIN tags tg ON tg.id = tt.tag_id WHERE tg.name IN (%s))`,
			strings.Join(placeholders, ", "),
		))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch filter.Sort {
	case "due":
		query += " ORDER BY due_date ASC NULLS LAST, created_at ASC"
	default:
		query += " ORDER BY created_at ASC"
	}

	var tasks []*models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, input *TaskUpdateInput) (*models.Task, error) {
	var (
		set  []string
		args []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if input.Title != nil {
		set = append(set, "title = "+arg(*input.Title))
	}
	if input.Description != nil {
		set = append(set, "description = "+arg(*input.Description))
	}
	if input.DueDate != nil {
		set = append(set, "due_date = "+arg(*input.DueDate))
	}
	if input.Size != nil {
		set = append(set, "size = "+arg(*input.Size))
	}
	if input.Urgency != nil {
		set = append(set, "urgency = "+arg(*input.Urgency))
	}
	if input.IsWeekly != nil {
		set = append(set, "is_weekly = "+arg(*input.IsWeekly))
		if !*input.IsWeekly {
			set = append(set, "times_per_week = NULL")
		}
	}
	if input.TimesPerWeek != nil {
		set = append(set, "times_per_week = "+arg(*input.TimesPerWeek))
	}
	set = append(set, "updated_at = now()")

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = %s RETURNING %s`,
		strings.Join(set, ", "), arg(id), taskColumns,
	)

	var task models.Task
	if err := tx.GetContext(ctx, &task, query, args...); err != nil {
		return nil, rollback(tx, err)
	}

	// nil means "leave tags alone"; an empty slice clears them.
	if input.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, task.ID); err != nil {
			return nil, rollback(tx, fmt.Errorf("clear task tags: %w", err))
		}
		if err := attachTags(ctx, tx, task.ID, input.Tags); err != nil {
			return nil, rollback(tx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &task, nil
}

// SetCompleted overwrites the stored completion flag. completedAt is cleared
// when nil.
func (r *TaskRepository) SetCompleted(ctx context.Context, id int64, completed bool, completedAt *time.Time) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task, `
		UPDATE tasks
		SET completed = $1, completed_at = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+taskColumns,
		completed, nullTime(completedAt), id,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// attachTags upserts each tag by name and links it to the task.
func attachTags(ctx context.Context, tx *sqlx.Tx, taskID int64, names []string) error {
	for _, name := range names {
		var tagID int64
		err := tx.GetContext(ctx, &tagID, `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, name)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, taskID, tagID)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

// Helper function for transaction rollback
func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// Types for repository input
type TaskInput struct {
	Title        string
	Description  *string
	DueDate      *time.Time
	Size         string
	Urgency      string
	IsWeekly     bool
	TimesPerWeek *int
	Tags         []string
}

type TaskUpdateInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	Size         *string
	Urgency      *string
	IsWeekly     *bool
	TimesPerWeek *int
	Tags         []string
}

type ListFilter struct {
	Size          *string
	Urgency       *string
	Completed     *bool
	DueFrom       *time.Time
	DueTo         *time.Time
	OverdueBefore *time.Time
	Tags          []string
	Sort          string
}
