package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frogpad/internal/repository"
	"frogpad/internal/week"
)

// Wednesday mid-week, so the surrounding Monday..Sunday window is unambiguous.
var testNow = time.Date(2025, time.June, 18, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*TaskService, *memTaskStore, *memCompletionStore) {
	t.Helper()
	tasks := newMemTaskStore()
	completions := &memCompletionStore{}
	svc := NewTaskService(tasks, completions, newMemTagStore(), newMemCommentStore(), nil)
	svc.now = func() time.Time { return testNow }
	return svc, tasks, completions
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func createTask(t *testing.T, svc *TaskService, input *repository.TaskInput) *TaskDetail {
	t.Helper()
	detail, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	return detail
}

func weeklyInput(timesPerWeek int) *repository.TaskInput {
	return &repository.TaskInput{
		Title:        "water the plants",
		Size:         "small",
		Urgency:      "normal",
		IsWeekly:     true,
		TimesPerWeek: intPtr(timesPerWeek),
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &repository.TaskInput{Size: "small", Urgency: "normal"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Create(ctx, &repository.TaskInput{
		Title: "no target", Size: "small", Urgency: "normal", IsWeekly: true,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Create(ctx, &repository.TaskInput{
		Title: "zero target", Size: "small", Urgency: "normal", IsWeekly: true, TimesPerWeek: intPtr(0),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateDropsTargetForNonWeekly(t *testing.T) {
	svc, _, _ := newTestService(t)

	detail := createTask(t, svc, &repository.TaskInput{
		Title: "one-shot", Size: "big", Urgency: "high", TimesPerWeek: intPtr(3),
	})
	assert.False(t, detail.IsWeekly)
	assert.Nil(t, detail.TimesPerWeek)
	assert.Nil(t, detail.WeeklyCompletionCount)
}

func TestToggleNonWeekly(t *testing.T) {
	svc, _, completions := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, &repository.TaskInput{Title: "file taxes", Size: "big", Urgency: "critical"})

	result, err := svc.ToggleCompletion(ctx, detail.ID, true, 1)
	require.NoError(t, err)
	assert.True(t, result.Task.Completed)
	assert.NotNil(t, result.Task.CompletedAt)
	assert.False(t, result.Recorded)
	assert.Empty(t, completions.entries, "non-weekly toggles must not touch the ledger")

	result, err = svc.ToggleCompletion(ctx, detail.ID, false, 1)
	require.NoError(t, err)
	assert.False(t, result.Task.Completed)
	assert.Nil(t, result.Task.CompletedAt)
	assert.Empty(t, completions.entries)
}

func TestWeeklyProgressionToTarget(t *testing.T) {
	svc, _, completions := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, weeklyInput(3))

	for i, wantCompleted := range []bool{false, false, true} {
		result, err := svc.ToggleCompletion(ctx, detail.ID, true, 1)
		require.NoError(t, err)
		assert.True(t, result.Recorded)
		assert.Equal(t, wantCompleted, result.Task.Completed, "after completion %d", i+1)
		require.NotNil(t, result.Task.WeeklyCompletionCount)
		assert.Equal(t, i+1, *result.Task.WeeklyCompletionCount)
	}
	assert.Len(t, completions.entries, 3)

	// Completions past the target still append and stay complete.
	result, err := svc.ToggleCompletion(ctx, detail.ID, true, 1)
	require.NoError(t, err)
	assert.True(t, result.Task.Completed)
	assert.Equal(t, 4, *result.Task.WeeklyCompletionCount)
	assert.Len(t, completions.entries, 4)
}

func TestWeeklyTargetOfTwo(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, weeklyInput(2))

	result, err := svc.ToggleCompletion(ctx, detail.ID, true, 1)
	require.NoError(t, err)
	assert.False(t, result.Task.Completed)
	assert.Equal(t, 1, *result.Task.WeeklyCompletionCount)

	result, err = svc.ToggleCompletion(ctx, detail.ID, true, 1)
	require.NoError(t, err)
	assert.True(t, result.Task.Completed)
	assert.Equal(t, 2, *result.Task.WeeklyCompletionCount)

	stats, err := svc.WeeklyStats(ctx, detail.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CurrentWeekCompletions)
	assert.True(t, stats.IsCompleteForWeek)
}

func TestUnmarkWeeklyKeepsLedger(t *testing.T) {
	svc, _, completions := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, weeklyInput(2))
	for i := 0; i < 2; i++ {
		_, err := svc.ToggleCompletion(ctx, detail.ID, true, 1)
		require.NoError(t, err)
	}

	result, err := svc.ToggleCompletion(ctx, detail.ID, false, 1)
	require.NoError(t, err)
	assert.False(t, result.Task.Completed)
	assert.False(t, result.Recorded)
	assert.Len(t, completions.entries, 2, "un-marking must not retract ledger entries")
	assert.Equal(t, 2, *result.Task.WeeklyCompletionCount)

	// History is intact, so the target is still met.
	complete, err := svc.IsCompleteForWeek(ctx, detail.ID, 1)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestToggleUnknownTask(t *testing.T) {
	svc, _, completions := newTestService(t)

	_, err := svc.ToggleCompletion(context.Background(), 42, true, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Empty(t, completions.entries, "a failed lookup must not write to the ledger")
}

func TestWeeklyCountScopedToWindow(t *testing.T) {
	svc, _, completions := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, weeklyInput(2))

	// One entry from last week and one from just before this week's start.
	start, _ := week.Window(testNow)
	_, err := completions.Record(ctx, detail.ID, 1, start.AddDate(0, 0, -3))
	require.NoError(t, err)
	_, err = completions.Record(ctx, detail.ID, 1, start.Add(-time.Millisecond))
	require.NoError(t, err)

	count, err := svc.WeeklyCompletionCount(ctx, detail.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// An entry at the exact window start is inclusive.
	_, err = completions.Record(ctx, detail.ID, 1, start)
	require.NoError(t, err)
	count, err = svc.WeeklyCompletionCount(ctx, detail.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCompletionsScopedToUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, weeklyInput(1))

	result, err := svc.ToggleCompletion(ctx, detail.ID, true, 1)
	require.NoError(t, err)
	assert.True(t, result.Task.Completed)

	count, err := svc.WeeklyCompletionCount(ctx, detail.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIsCompleteForWeek(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Missing task reads as incomplete, not an error.
	complete, err := svc.IsCompleteForWeek(ctx, 404, 1)
	require.NoError(t, err)
	assert.False(t, complete)

	nonWeekly := createTask(t, svc, &repository.TaskInput{Title: "one-shot", Size: "small", Urgency: "low"})
	complete, err = svc.IsCompleteForWeek(ctx, nonWeekly.ID, 1)
	require.NoError(t, err)
	assert.False(t, complete)

	weekly := createTask(t, svc, weeklyInput(1))
	complete, err = svc.IsCompleteForWeek(ctx, weekly.ID, 1)
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = svc.ToggleCompletion(ctx, weekly.ID, true, 1)
	require.NoError(t, err)
	complete, err = svc.IsCompleteForWeek(ctx, weekly.ID, 1)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestWeeklyStatsBuckets(t *testing.T) {
	svc, _, completions := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, weeklyInput(3))

	currentStart, _ := week.Window(testNow)
	twoWeeksAgo := currentStart.AddDate(0, 0, -14)

	// Three completions two weeks ago, one this week, one outside the window.
	for _, at := range []time.Time{
		twoWeeksAgo.Add(9 * time.Hour),
		twoWeeksAgo.AddDate(0, 0, 2),
		twoWeeksAgo.AddDate(0, 0, 5),
		testNow,
		currentStart.AddDate(0, 0, -28),
	} {
		_, err := completions.Record(ctx, detail.ID, 1, at)
		require.NoError(t, err)
	}

	stats, err := svc.WeeklyStats(ctx, detail.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, detail.ID, stats.TaskID)
	assert.Equal(t, int64(1), stats.UserID)
	assert.True(t, stats.IsWeekly)
	assert.Equal(t, 3, stats.TimesPerWeek)
	assert.Equal(t, 1, stats.CurrentWeekCompletions)
	assert.False(t, stats.IsCompleteForWeek)

	require.Len(t, stats.Weeks, 4)
	for i, wk := range stats.Weeks {
		assert.Equal(t, 3, wk.Target)
		assert.Equal(t, i == 3, wk.IsCurrentWeek, "only the last bucket is the current week")
		if i > 0 {
			assert.Equal(t, stats.Weeks[i-1].WeekStart.AddDate(0, 0, 7), wk.WeekStart, "buckets run oldest to newest")
		}
	}
	assert.Equal(t, []int{0, 3, 0, 1}, []int{
		stats.Weeks[0].Completions,
		stats.Weeks[1].Completions,
		stats.Weeks[2].Completions,
		stats.Weeks[3].Completions,
	})
	assert.Equal(t, currentStart, stats.Weeks[3].WeekStart)

	require.Len(t, stats.RecentCompletions, 1)
	assert.Equal(t, testNow, stats.RecentCompletions[0].Date)
}

func TestWeeklyStatsRejectsNonWeekly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, &repository.TaskInput{Title: "one-shot", Size: "small", Urgency: "low"})

	_, err := svc.WeeklyStats(ctx, detail.ID, 1)
	assert.ErrorIs(t, err, ErrNotWeekly)

	_, err = svc.WeeklyStats(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateWeeklyValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, &repository.TaskInput{Title: "one-shot", Size: "small", Urgency: "low"})

	// Flipping to weekly without a target anywhere is rejected.
	_, err := svc.Update(ctx, detail.ID, &repository.TaskUpdateInput{IsWeekly: boolPtr(true)}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Update(ctx, detail.ID, &repository.TaskUpdateInput{TimesPerWeek: intPtr(0)}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err := svc.Update(ctx, detail.ID, &repository.TaskUpdateInput{
		IsWeekly: boolPtr(true), TimesPerWeek: intPtr(2),
	}, 1)
	require.NoError(t, err)
	assert.True(t, updated.IsWeekly)
	require.NotNil(t, updated.TimesPerWeek)
	assert.Equal(t, 2, *updated.TimesPerWeek)

	// Back to one-shot clears the target.
	updated, err = svc.Update(ctx, detail.ID, &repository.TaskUpdateInput{IsWeekly: boolPtr(false)}, 1)
	require.NoError(t, err)
	assert.False(t, updated.IsWeekly)
	assert.Nil(t, updated.TimesPerWeek)

	_, err = svc.Update(ctx, 404, &repository.TaskUpdateInput{Title: strPtr("nope")}, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	detail := createTask(t, svc, &repository.TaskInput{Title: "gone soon", Size: "small", Urgency: "low"})
	require.NoError(t, svc.Delete(ctx, detail.ID))

	err := svc.Delete(ctx, detail.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.Get(ctx, detail.ID, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListEmbedsWeeklyCount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	weekly := createTask(t, svc, weeklyInput(3))
	createTask(t, svc, &repository.TaskInput{Title: "one-shot", Size: "small", Urgency: "low"})

	_, err := svc.ToggleCompletion(ctx, weekly.ID, true, 1)
	require.NoError(t, err)

	details, err := svc.List(ctx, ListOptions{UserID: 1})
	require.NoError(t, err)
	require.Len(t, details, 2)

	require.NotNil(t, details[0].WeeklyCompletionCount)
	assert.Equal(t, 1, *details[0].WeeklyCompletionCount)
	assert.Nil(t, details[1].WeeklyCompletionCount)
}

func TestCommentsRequireTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, 404, "hello")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	detail := createTask(t, svc, &repository.TaskInput{Title: "chatty", Size: "small", Urgency: "low"})

	_, err = svc.AddComment(ctx, detail.ID, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	comment, err := svc.AddComment(ctx, detail.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, detail.ID, comment.TaskID)

	comments, err := svc.Comments(ctx, detail.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Text)
}

func TestUpsertTag(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertTag(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	first, err := svc.UpsertTag(ctx, "garden")
	require.NoError(t, err)
	second, err := svc.UpsertTag(ctx, "garden")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	tags, err := svc.Tags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}
