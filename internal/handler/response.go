package handler

import "github.com/labstack/echo/v4"

// fail writes the uniform error envelope: {success:false, code, message}.
// The code values live in model (model.Code*) so handlers and middleware
// share one vocabulary.
func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"code":    code,
		"message": msg,
	})
}
