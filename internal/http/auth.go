package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleSignUp(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := s.auth.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := s.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
