// Package v2 exposes the /v2 download surface: develop and design
// submission downloads plus the document download supplement.
package v2

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	srverr "github.com/crowdforge/contest-api/cmd/server/internal/error"
	servermiddleware "github.com/crowdforge/contest-api/cmd/server/internal/middleware"
	"github.com/crowdforge/contest-api/cmd/server/internal/ratelimit"
	"github.com/crowdforge/contest-api/cmd/server/internal/response"
	"github.com/crowdforge/contest-api/internal/config"
	"github.com/crowdforge/contest-api/internal/logger"
	"github.com/crowdforge/contest-api/internal/storage"
)

const name = "github.com/crowdforge/contest-api/cmd/server/routes/v2"

var tracer = otel.Tracer(name)

// Largest id the legacy platform hands out.
const maxEntityID = 2147483647

type Handler struct {
	DB     *gorm.DB
	store  storage.Store
	config *config.Config
}

func NewHandler(db *gorm.DB, store storage.Store, cfg *config.Config) Handler {
	return Handler{
		DB:     db,
		store:  store,
		config: cfg,
	}
}

func NewRedisLimiter(
	redisHost string,
	limiterKey string,
	perMinute int64,
	failOpen bool,
) middleware.RateLimiterConfig {
	l := logger.Logger

	redisAddr := redisHost + ":6379"
	l.Debug("Setting up rate limiter with Redis", "redis", redisAddr)
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	store := ratelimit.NewRedisLimitStore(ratelimit.RedisLimiterConfig{
		PerMinute:   perMinute,
		RedisClient: rdb,
		LimiterKey:  limiterKey,
		FailOpen:    failOpen,
	})

	return middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			caller, ok := servermiddleware.CallerFrom(c)
			if !ok {
				return "", srverr.ErrTypeAssertMismatch
			}
			if caller.Thurgood {
				return "thurgood", nil
			}
			return strconv.FormatInt(caller.UserID, 10), nil
		},
		ErrorHandler: func(context echo.Context, _ error) error {
			return context.JSON(http.StatusForbidden, nil)
		},
		DenyHandler: func(context echo.Context, _ string, _ error) error {
			return context.JSON(http.StatusTooManyRequests, nil)
		},
	}
}

func (h *Handler) AddRoutes(e *echo.Echo) {
	l := logger.Logger

	v2Group := e.Group("/v2")

	downloadGroup := v2Group.Group("")

	if h.config.RateLimit != nil && h.config.RateLimit.DownloadsPerMinute > 0 {
		downloadGroup.Use(
			middleware.RateLimiterWithConfig(
				NewRedisLimiter(
					h.config.RateLimit.RedisHost,
					"download",
					h.config.RateLimit.DownloadsPerMinute,
					h.config.RateLimit.FailOpen,
				),
			),
		)
	} else {
		l.Warn("not configured to have a download rate limit")
	}

	downloadGroup.GET(
		"/develop/download/:submissionId/",
		h.DevelopDownload,
		servermiddleware.Authenticate(h.config, true),
	)
	downloadGroup.GET(
		"/design/download/:submissionId/",
		h.DesignDownload,
		servermiddleware.Authenticate(h.config, false),
	)
	downloadGroup.GET(
		"/download/document/:documentId/",
		h.DocumentDownload,
		servermiddleware.Authenticate(h.config, false),
	)
}

// pathID parses a positive numeric path parameter with the platform's
// legacy validation messages.
func pathID(c echo.Context, param string) (int64, error) {
	raw := c.Param(param)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, response.BadRequest(param + " should be number.")
	}
	if id <= 0 {
		return 0, response.BadRequest(param + " should be positive.")
	}
	if id > maxEntityID {
		return 0, response.BadRequest(param + " should be less or equal to 2147483647.")
	}

	return id, nil
}
