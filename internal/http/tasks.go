package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"frogpad/internal/repository"
	"frogpad/internal/service"
)

// handleListTasks returns tasks matching the query filters, each augmented
// with its current-week completion count when weekly.
func (s *Server) handleListTasks(c echo.Context) error {
	opts := service.ListOptions{
		Due:    c.QueryParam("due"),
		Sort:   c.QueryParam("sort"),
		Tags:   c.QueryParams()["tags"],
		UserID: s.config.DefaultUserID,
	}

	if v := c.QueryParam("size"); v != "" {
		opts.Size = &v
	}
	if v := c.QueryParam("urgency"); v != "" {
		opts.Urgency = &v
	}
	if v := c.QueryParam("completed"); v != "" {
		completed := v == "true"
		opts.Completed = &completed
	}
	if v := c.QueryParam("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user ID"})
		}
		opts.UserID = id
	}

	tasks, err := s.tasks.List(c.Request().Context(), opts)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid create task request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := s.tasks.Create(c.Request().Context(), &repository.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Size:         req.Size,
		Urgency:      req.Urgency,
		IsWeekly:     req.IsWeekly,
		TimesPerWeek: req.TimesPerWeek,
		Tags:         req.Tags,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID"})
	}

	task, err := s.tasks.Get(c.Request().Context(), id, s.config.DefaultUserID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// handleUpdateTask applies field updates and, when the body carries a
// completed flag, runs the completion state machine. The two can be combined
// in a single PATCH; the toggle runs last.
func (s *Server) handleUpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID"})
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid update task request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := s.userID(req.UserID)
	ctx := c.Request().Context()

	fieldUpdate := req.Title != nil || req.Description != nil || req.DueDate != nil ||
		req.Size != nil || req.Urgency != nil || req.IsWeekly != nil ||
		req.TimesPerWeek != nil || req.Tags != nil

	var task *service.TaskDetail
	if fieldUpdate {
		task, err = s.tasks.Update(ctx, id, &repository.TaskUpdateInput{
			Title:        req.Title,
			Description:  req.Description,
			DueDate:      req.DueDate,
			Size:         req.Size,
			Urgency:      req.Urgency,
			IsWeekly:     req.IsWeekly,
			TimesPerWeek: req.TimesPerWeek,
			Tags:         req.Tags,
		}, userID)
		if err != nil {
			return s.respondError(c, err)
		}
	}

	if req.Completed != nil {
		result, err := s.tasks.ToggleCompletion(ctx, id, *req.Completed, userID)
		if err != nil {
			return s.respondError(c, err)
		}
		if result.Recorded {
			s.metrics.CompletionRecorded()
		}
		return c.JSON(http.StatusOK, result)
	}

	if task == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no fields to update"})
	}
	return c.JSON(http.StatusOK, service.ToggleResult{Task: task})
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID"})
	}

	if err := s.tasks.Delete(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleWeeklyStats serves the 4-week history for a weekly task.
func (s *Server) handleWeeklyStats(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID"})
	}

	userID := s.config.DefaultUserID
	if v := c.QueryParam("userId"); v != "" {
		userID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user ID"})
		}
	}

	stats, err := s.tasks.WeeklyStats(c.Request().Context(), id, userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// handleExport streams every task as a pretty-printed JSON attachment.
func (s *Server) handleExport(c echo.Context) error {
	tasks, err := s.tasks.List(c.Request().Context(), service.ListOptions{
		UserID: s.config.DefaultUserID,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	export := make([]ExportedTask, 0, len(tasks))
	for _, t := range tasks {
		entry := ExportedTask{
			Title:       t.Title,
			Description: t.Description,
			Size:        t.Size,
			Urgency:     t.Urgency,
			Tags:        t.Tags,
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt,
			Comments:    make([]ExportedComment, 0, len(t.Comments)),
		}
		for _, cm := range t.Comments {
			entry.Comments = append(entry.Comments, ExportedComment{Text: cm.Text, Timestamp: cm.Timestamp})
		}
		export = append(export, entry)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return s.respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=tasks-export.json`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func taskID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
