package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleListTags(c echo.Context) error {
	tags, err := s.tasks.Tags(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

func (s *Server) handleUpsertTag(c echo.Context) error {
	var req UpsertTagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tag, err := s.tasks.UpsertTag(c.Request().Context(), req.Name)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

func (s *Server) handleListComments(c echo.Context) error {
	v := c.QueryParam("taskId")
	if v == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "taskId is required"})
	}
	taskID, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID"})
	}

	comments, err := s.tasks.Comments(c.Request().Context(), taskID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (s *Server) handleCreateComment(c echo.Context) error {
	var req CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := s.tasks.AddComment(c.Request().Context(), req.TaskID, req.Text)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}
