package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emergid/emergency-medical-id/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// user's role is in the allowed set. Roles correspond to the values stored
// in the JWT's "role" claim ("patient" or "doctor"). It assumes JWTAuth has
// already stored the role in the context; a missing or unknown role is
// rejected with 403 the same way a wrong one is.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false, "code": model.CodeForbidden, "message": "forbidden",
				})
			}
			return next(c)
		}
	}
}
