package handlers

import (
	"net/http"

	"lyrsync/internal/version"

	"github.com/labstack/echo/v4"
)

// Health returns service liveness and version.
// GET /api/health
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}
