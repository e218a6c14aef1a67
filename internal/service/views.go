package service

import (
	"time"

	"github.com/google/uuid"

	"frogpad/internal/models"
)

// TaskDetail is the wire representation of a task, with tags, comments and
// (for weekly tasks) the derived current-week completion count embedded.
type TaskDetail struct {
	ID                    int64         `json:"id"`
	Title                 string        `json:"title"`
	Description           *string       `json:"description,omitempty"`
	DueDate               *time.Time    `json:"dueDate,omitempty"`
	Size                  string        `json:"size"`
	Urgency               string        `json:"urgency"`
	Completed             bool          `json:"completed"`
	CompletedAt           *time.Time    `json:"completedAt,omitempty"`
	IsWeekly              bool          `json:"isWeekly"`
	TimesPerWeek          *int          `json:"timesPerWeek,omitempty"`
	WeeklyCompletionCount *int          `json:"weeklyCompletionCount,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	Tags                  []string      `json:"tags"`
	Comments              []CommentView `json:"comments"`
}

type CommentView struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type TagView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToggleResult is returned by the completion toggle. Recorded is true when
// the toggle appended a new ledger entry, so callers can surface the task in
// a "recently completed" view without a full reload.
type ToggleResult struct {
	Task     *TaskDetail `json:"task"`
	Recorded bool        `json:"recorded"`
}

// WeekStats is one bucket of the 4-week history.
type WeekStats struct {
	WeekStart     time.Time `json:"weekStart"`
	WeekEnd       time.Time `json:"weekEnd"`
	Completions   int       `json:"completions"`
	Target        int       `json:"target"`
	IsCurrentWeek bool      `json:"isCurrentWeek"`
}

type CompletionView struct {
	ID   uuid.UUID `json:"id"`
	Date time.Time `json:"date"`
}

// WeeklyStatsView is the weekly-stats read model: current-week progress plus
// a 4-week history ordered oldest to newest.
type WeeklyStatsView struct {
	TaskID                 int64            `json:"taskId"`
	UserID                 int64            `json:"userId"`
	IsWeekly               bool             `json:"isWeekly"`
	TimesPerWeek           int              `json:"timesPerWeek"`
	CurrentWeekCompletions int              `json:"currentWeekCompletions"`
	IsCompleteForWeek      bool             `json:"isCompleteForWeek"`
	Weeks                  []WeekStats      `json:"weeklyStats"`
	RecentCompletions      []CompletionView `json:"recentCompletions"`
}

func newTaskDetail(task *models.Task, tags []models.Tag, comments []models.Comment, weeklyCount *int) *TaskDetail {
	detail := &TaskDetail{
		ID:                    task.ID,
		Title:                 task.Title,
		Size:                  task.Size,
		Urgency:               task.Urgency,
		Completed:             task.Completed,
		IsWeekly:              task.IsWeekly,
		WeeklyCompletionCount: weeklyCount,
		CreatedAt:             task.CreatedAt,
		Tags:                  make([]string, 0, len(tags)),
		Comments:              make([]CommentView, 0, len(comments)),
	}

	if task.Description.Valid {
		detail.Description = &task.Description.String
	}
	if task.DueDate.Valid {
		detail.DueDate = &task.DueDate.Time
	}
	if task.CompletedAt.Valid {
		detail.CompletedAt = &task.CompletedAt.Time
	}
	if task.TimesPerWeek.Valid {
		target := int(task.TimesPerWeek.Int64)
		detail.TimesPerWeek = &target
	}

	for _, tag := range tags {
		detail.Tags = append(detail.Tags, tag.Name)
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, CommentView{
			ID:        c.ID,
			TaskID:    c.TaskID,
			Text:      c.Text,
			Timestamp: c.Timestamp,
		})
	}

	return detail
}
