package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers return plain-string echo errors; the router's error handler
// wraps them in the legacy error envelope.
var (
	InternalServerError = echo.NewHTTPError(
		http.StatusInternalServerError,
		"something went wrong",
	)
	Unauthorized = echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
)

func BadRequest(details string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, details)
}

func Forbidden(details string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusForbidden, details)
}

func NotFound(details string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, details)
}

func ServiceUnavailable(details string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusServiceUnavailable, details)
}
