// internal/repository/completion_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"frogpad/internal/models"
)

// CompletionRepository is the append-only completion ledger. Entries are
// inserted by weekly completion events and never updated; duplicates on the
// same day are allowed and all count.
type CompletionRepository struct {
	db *sqlx.DB
}

func NewCompletionRepository(db *sqlx.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Record appends one ledger entry for (taskID, userID) at the given instant.
func (r *CompletionRepository) Record(ctx context.Context, taskID, userID int64, at time.Time) (*models.TaskCompletion, error) {
	entry := &models.TaskCompletion{
		ID:     uuid.New(),
		TaskID: taskID,
		UserID: userID,
		Date:   at,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_completions (id, task_id, user_id, date)
		VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.TaskID, entry.UserID, entry.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	return entry, nil
}

// CountInWindow counts entries with date in [start, end] inclusive.
func (r *CompletionRepository) CountInWindow(ctx context.Context, taskID, userID int64, start, end time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM task_completions
		WHERE task_id = $1 AND user_id = $2 AND date >= $3 AND date <= $4`,
		taskID, userID, start, end,
	)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}

// ListInWindow returns entries with date in [start, end] inclusive, oldest first.
func (r *CompletionRepository) ListInWindow(ctx context.Context, taskID, userID int64, start, end time.Time) ([]models.TaskCompletion, error) {
	var entries []models.TaskCompletion
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, task_id, user_id, date FROM task_completions
		WHERE task_id = $1 AND user_id = $2 AND date >= $3 AND date <= $4
		ORDER BY date ASC`,
		taskID, userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return entries, nil
}
