package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"frogpad/internal/models"
	"frogpad/internal/repository"
)

// In-memory store fakes backing the service tests.

type memTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[int64]*models.Task)}
}

func (m *memTaskStore) Create(_ context.Context, input *repository.TaskInput) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	task := &models.Task{
		ID:        m.nextID,
		Title:     input.Title,
		Size:      input.Size,
		Urgency:   input.Urgency,
		IsWeekly:  input.IsWeekly,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if input.Description != nil {
		task.Description = sql.NullString{String: *input.Description, Valid: true}
	}
	if input.DueDate != nil {
		task.DueDate = sql.NullTime{Time: *input.DueDate, Valid: true}
	}
	if input.TimesPerWeek != nil {
		task.TimesPerWeek = sql.NullInt64{Int64: int64(*input.TimesPerWeek), Valid: true}
	}
	m.tasks[task.ID] = task
	return copyTask(task), nil
}

func (m *memTaskStore) GetByID(_ context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyTask(task), nil
}

func (m *memTaskStore) List(_ context.Context, filter repository.ListFilter) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []int64
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []*models.Task
	for _, id := range ids {
		task := m.tasks[id]
		if filter.Size != nil && task.Size != *filter.Size {
			continue
		}
		if filter.Urgency != nil && task.Urgency != *filter.Urgency {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		result = append(result, copyTask(task))
	}
	return result, nil
}

func (m *memTaskStore) Update(_ context.Context, id int64, input *repository.TaskUpdateInput) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = sql.NullString{String: *input.Description, Valid: true}
	}
	if input.DueDate != nil {
		task.DueDate = sql.NullTime{Time: *input.DueDate, Valid: true}
	}
	if input.Size != nil {
		task.Size = *input.Size
	}
	if input.Urgency != nil {
		task.Urgency = *input.Urgency
	}
	if input.IsWeekly != nil {
		task.IsWeekly = *input.IsWeekly
		if !task.IsWeekly {
			task.TimesPerWeek = sql.NullInt64{}
		}
	}
	if input.TimesPerWeek != nil {
		task.TimesPerWeek = sql.NullInt64{Int64: int64(*input.TimesPerWeek), Valid: true}
	}
	task.UpdatedAt = time.Now()
	return copyTask(task), nil
}

func (m *memTaskStore) SetCompleted(_ context.Context, id int64, completed bool, completedAt *time.Time) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	task.Completed = completed
	if completedAt != nil {
		task.CompletedAt = sql.NullTime{Time: *completedAt, Valid: true}
	} else {
		task.CompletedAt = sql.NullTime{}
	}
	return copyTask(task), nil
}

func (m *memTaskStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.tasks, id)
	return nil
}

func copyTask(t *models.Task) *models.Task {
	clone := *t
	return &clone
}

type memCompletionStore struct {
	mu      sync.Mutex
	entries []models.TaskCompletion
}

func (m *memCompletionStore) Record(_ context.Context, taskID, userID int64, at time.Time) (*models.TaskCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := models.TaskCompletion{ID: uuid.New(), TaskID: taskID, UserID: userID, Date: at}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *memCompletionStore) CountInWindow(ctx context.Context, taskID, userID int64, start, end time.Time) (int, error) {
	entries, err := m.ListInWindow(ctx, taskID, userID, start, end)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (m *memCompletionStore) ListInWindow(_ context.Context, taskID, userID int64, start, end time.Time) ([]models.TaskCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.TaskCompletion
	for _, e := range m.entries {
		if e.TaskID != taskID || e.UserID != userID {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

type memTagStore struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]models.Tag
	links  map[int64][]string
}

func newMemTagStore() *memTagStore {
	return &memTagStore{byName: make(map[string]models.Tag), links: make(map[int64][]string)}
}

func (m *memTagStore) List(_ context.Context) ([]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tags []models.Tag
	for _, t := range m.byName {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *memTagStore) Upsert(_ context.Context, name string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tag, ok := m.byName[name]; ok {
		return &tag, nil
	}
	m.nextID++
	tag := models.Tag{ID: m.nextID, Name: name}
	m.byName[name] = tag
	return &tag, nil
}

func (m *memTagStore) ListForTask(_ context.Context, taskID int64) ([]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tags []models.Tag
	for _, name := range m.links[taskID] {
		tags = append(tags, m.byName[name])
	}
	return tags, nil
}

func (m *memTagStore) ListForTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Tag, error) {
	result := make(map[int64][]models.Tag)
	for _, id := range taskIDs {
		tags, err := m.ListForTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			result[id] = tags
		}
	}
	return result, nil
}

type memCommentStore struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64][]models.Comment
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{comments: make(map[int64][]models.Comment)}
}

func (m *memCommentStore) Create(_ context.Context, taskID int64, text string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	comment := models.Comment{ID: m.nextID, TaskID: taskID, Text: text, Timestamp: time.Now()}
	m.comments[taskID] = append(m.comments[taskID], comment)
	return &comment, nil
}

func (m *memCommentStore) ListForTask(_ context.Context, taskID int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Comment(nil), m.comments[taskID]...), nil
}

func (m *memCommentStore) ListForTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Comment, error) {
	result := make(map[int64][]models.Comment)
	for _, id := range taskIDs {
		comments, err := m.ListForTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(comments) > 0 {
			result[id] = comments
		}
	}
	return result, nil
}

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (m *memUserStore) Create(_ context.Context, email, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[email]; ok {
		return nil, &pq.Error{Code: "23505"}
	}
	m.nextID++
	user := models.User{ID: m.nextID, Email: email, Password: passwordHash, CreatedAt: time.Now()}
	m.users[email] = user
	return &user, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}
