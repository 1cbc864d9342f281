package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	servermiddleware "github.com/crowdforge/contest-api/cmd/server/internal/middleware"
	"github.com/crowdforge/contest-api/internal/types"
	"github.com/crowdforge/contest-api/internal/validator"
)

// errorHandler renders every error in the platform's legacy envelope:
// {"error": {"name": ..., "value": ..., "details": ...}}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	details := "something went wrong"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			details = msg
		}
	}

	if jsonErr := c.JSON(code, types.NewErrorEnvelope(code, details)); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}

func BuildEcho(logger *slog.Logger) (*echo.Echo, error) {
	e := echo.New()

	validate := validator.Create()
	e.Validator = &validate

	e.HTTPErrorHandler = errorHandler

	e.Pre(middleware.AddTrailingSlash())

	e.Use(
		otelecho.Middleware("contest-api"),
		slogecho.NewWithConfig(logger, slogecho.Config{}),
		servermiddleware.Time("time"),
	)

	e.GET("/health/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e, nil
}
