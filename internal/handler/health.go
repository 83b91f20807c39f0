package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emergid/emergency-medical-id/internal/database"
)

// Health reports service liveness plus database connectivity, the shape the
// dashboards and load balancers poll: {"status":"OK","db":"Connected"}.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		dbState := "Disconnected"
		if db != nil && database.Alive(c.Request().Context(), db) {
			dbState = "Connected"
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "OK", "db": dbState})
	}
}
