// internal/repository/comment_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"frogpad/internal/models"
)

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, taskID int64, text string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, `
		INSERT INTO comments (task_id, text)
		VALUES ($1, $2)
		RETURNING id, task_id, text, timestamp`,
		taskID, text,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) ListForTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments, `
		SELECT id, task_id, text, timestamp FROM comments
		WHERE task_id = $1
		ORDER BY timestamp ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// ListForTasks bulk-loads comment threads for a set of tasks.
func (r *CommentRepository) ListForTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Comment, error) {
	result := make(map[int64][]models.Comment, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, task_id, text, timestamp FROM comments
		WHERE task_id IN (?)
		ORDER BY timestamp ASC`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("build comment query: %w", err)
	}

	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list comments for tasks: %w", err)
	}
	for _, c := range comments {
		result[c.TaskID] = append(result[c.TaskID], c)
	}
	return result, nil
}
