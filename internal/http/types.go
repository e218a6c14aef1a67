package http

import (
	"context"
	"time"

	"frogpad/internal/repository"
	"frogpad/internal/service"
)

// TaskAPI is the slice of TaskService the HTTP layer consumes.
type TaskAPI interface {
	Create(ctx context.Context, input *repository.TaskInput) (*service.TaskDetail, error)
	Get(ctx context.Context, id, userID int64) (*service.TaskDetail, error)
	List(ctx context.Context, opts service.ListOptions) ([]*service.TaskDetail, error)
	Update(ctx context.Context, id int64, input *repository.TaskUpdateInput, userID int64) (*service.TaskDetail, error)
	Delete(ctx context.Context, id int64) error
	ToggleCompletion(ctx context.Context, taskID int64, completed bool, userID int64) (*service.ToggleResult, error)
	WeeklyStats(ctx context.Context, taskID, userID int64) (*service.WeeklyStatsView, error)
	Tags(ctx context.Context) ([]service.TagView, error)
	UpsertTag(ctx context.Context, name string) (*service.TagView, error)
	Comments(ctx context.Context, taskID int64) ([]service.CommentView, error)
	AddComment(ctx context.Context, taskID int64, text string) (*service.CommentView, error)
}

type AuthAPI interface {
	SignUp(ctx context.Context, email, password string) (*service.UserView, error)
	Login(ctx context.Context, email, password string) (*service.UserView, error)
}

type AdminAPI interface {
	Tables() []string
	ListRows(ctx context.Context, table string) ([]map[string]interface{}, error)
	DeleteRow(ctx context.Context, table, id string) error
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the uniform failure payload. IsWeekly is set (to false)
// only when a weekly-specific operation was attempted on a non-weekly task.
type ErrorResponse struct {
	Error    string `json:"error"`
	IsWeekly *bool  `json:"isWeekly,omitempty"`
}

// CreateTaskRequest is the body for POST /api/tasks.
type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"dueDate"`
	Size         string     `json:"size" validate:"required,oneof=small medium big"`
	Urgency      string     `json:"urgency" validate:"required,oneof=low normal high critical"`
	Tags         []string   `json:"tags"`
	IsWeekly     bool       `json:"isWeekly"`
	TimesPerWeek *int       `json:"timesPerWeek" validate:"required_if=IsWeekly true,omitempty,gte=1"`
}

// UpdateTaskRequest is the body for PATCH /api/tasks/:id. All fields are
// optional; Completed drives the completion state machine.
type UpdateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"dueDate"`
	Size         *string    `json:"size" validate:"omitempty,oneof=small medium big"`
	Urgency      *string    `json:"urgency" validate:"omitempty,oneof=low normal high critical"`
	Tags         []string   `json:"tags"`
	IsWeekly     *bool      `json:"isWeekly"`
	TimesPerWeek *int       `json:"timesPerWeek" validate:"omitempty,gte=1"`
	Completed    *bool      `json:"completed"`
	UserID       *int64     `json:"userId"`
}

// UpsertTagRequest is the body for POST /api/tags.
type UpsertTagRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateCommentRequest is the body for POST /api/comments.
type CreateCommentRequest struct {
	Text   string `json:"text" validate:"required"`
	TaskID int64  `json:"taskId" validate:"required"`
}

// CredentialsRequest is the body for POST /api/signup and /api/login.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ExportedTask is one entry of the GET /api/export payload.
type ExportedTask struct {
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Size        string            `json:"size"`
	Urgency     string            `json:"urgency"`
	Tags        []string          `json:"tags"`
	DueDate     *time.Time        `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	Comments    []ExportedComment `json:"comments"`
}

type ExportedComment struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
