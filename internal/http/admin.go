package http

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// The admin surface gives direct row access to an allowlisted set of tables.
// Unknown tables look the same as missing rows: 404.

func (s *Server) handleAdminTables(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tables": s.admin.Tables(),
	})
}

func (s *Server) handleAdminListRows(c echo.Context) error {
	rows, err := s.admin.ListRows(c.Request().Context(), c.Param("table"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown table"})
		}
		return s.respondError(c, err)
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleAdminDeleteRow(c echo.Context) error {
	err := s.admin.DeleteRow(c.Request().Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "row not found"})
		}
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
