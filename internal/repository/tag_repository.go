// internal/repository/tag_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"frogpad/internal/models"
)

type TagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Upsert creates the tag if it does not exist and returns it either way.
func (r *TagRepository) Upsert(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.GetContext(ctx, &tag, `
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`, name)
	if err != nil {
		return nil, fmt.Errorf("upsert tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) ListForTask(ctx context.Context, taskID int64) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.SelectContext(ctx, &tags, `
		SELECT tg.id, tg.name FROM tags tg
		JOIN task_tags tt ON tt.tag_id = tg.id
		WHERE tt.task_id = $1
		ORDER BY tg.name ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	return tags, nil
}

// ListForTasks bulk-loads tags for a set of tasks, keyed by task id.
func (r *TagRepository) ListForTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Tag, error) {
	result := make(map[int64][]models.Tag, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT tt.task_id, tg.id, tg.name FROM tags tg
		JOIN task_tags tt ON tt.tag_id = tg.id
		WHERE tt.task_id IN (?)
		ORDER BY tg.name ASC`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("build tag query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tags for tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID int64
			tag    models.Tag
		)
		if err := rows.Scan(&taskID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		result[taskID] = append(result[taskID], tag)
	}
	return result, rows.Err()
}
