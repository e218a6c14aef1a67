package service

import (
	"context"
	"time"

	"frogpad/internal/models"
	"frogpad/internal/repository"
)

// Store interfaces consumed by the services. The sqlx repositories in
// internal/repository are the production implementations; tests substitute
// in-memory fakes.

type TaskStore interface {
	Create(ctx context.Context, input *repository.TaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*models.Task, error)
	Update(ctx context.Context, id int64, input *repository.TaskUpdateInput) (*models.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool, completedAt *time.Time) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// CompletionStore is the append-only completion ledger.
type CompletionStore interface {
	Record(ctx context.Context, taskID, userID int64, at time.Time) (*models.TaskCompletion, error)
	CountInWindow(ctx context.Context, taskID, userID int64, start, end time.Time) (int, error)
	ListInWindow(ctx context.Context, taskID, userID int64, start, end time.Time) ([]models.TaskCompletion, error)
}

type TagStore interface {
	List(ctx context.Context) ([]models.Tag, error)
	Upsert(ctx context.Context, name string) (*models.Tag, error)
	ListForTask(ctx context.Context, taskID int64) ([]models.Tag, error)
	ListForTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Tag, error)
}

type CommentStore interface {
	Create(ctx context.Context, taskID int64, text string) (*models.Comment, error)
	ListForTask(ctx context.Context, taskID int64) ([]models.Comment, error)
	ListForTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Comment, error)
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
