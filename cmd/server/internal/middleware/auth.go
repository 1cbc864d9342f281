package middleware

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crowdforge/contest-api/cmd/server/internal/response"
	"github.com/crowdforge/contest-api/internal/config"
)

const name string = "github.com/crowdforge/contest-api/cmd/server/middleware"

var tracer = otel.Tracer(name)

// CallerKey is the echo context key the authenticated principal is stored
// under.
const CallerKey = "caller"

// Caller is the authenticated principal for a request. Thurgood marks the
// processing service account, which bypasses member authentication on the
// develop download route.
type Caller struct {
	UserID   int64
	Handle   string
	Admin    bool
	Thurgood bool
}

func CallerFrom(c echo.Context) (Caller, bool) {
	caller, ok := c.Get(CallerKey).(Caller)
	return caller, ok
}

// Claims carried by platform-issued member tokens.
type Claims struct {
	Handle string `json:"handle"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

func serviceAccountLogin(cfg *config.Config, c echo.Context) (bool, bool) {
	username := c.QueryParam("username")
	password := c.QueryParam("password")
	if username == "" && password == "" {
		return false, false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Thurgood.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Thurgood.Password)) == 1

	return true, userOK && passOK
}

// Authenticate validates the caller and stores a Caller in the request
// context. With allowThurgood set, the configured service account
// credential pair in the query string substitutes for a member token.
func Authenticate(cfg *config.Config, allowThurgood bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, span := tracer.Start(c.Request().Context(), "Authenticate", trace.WithAttributes(
				attribute.Bool("allowThurgood", allowThurgood),
			))
			defer span.End()

			if allowThurgood {
				attempted, ok := serviceAccountLogin(cfg, c)
				if attempted {
					if !ok {
						span.AddEvent("failed service account login")
						span.SetStatus(codes.Ok, "rejected service account credentials")
						return response.Unauthorized
					}

					span.AddEvent("service account login")
					span.RecordError(nil)
					span.SetStatus(codes.Ok, "authenticated service account")
					c.Set(CallerKey, Caller{Thurgood: true})
					return next(c)
				}
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				span.AddEvent("missing bearer token")
				span.SetStatus(codes.Ok, "rejected request without credentials")
				return response.Unauthorized
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(
				strings.TrimPrefix(header, prefix),
				claims,
				func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
					}
					return []byte(cfg.Auth.Secret), nil
				},
			)
			if err != nil || !token.Valid {
				span.RecordError(err)
				span.SetStatus(codes.Ok, "rejected invalid token")
				return response.Unauthorized
			}

			if cfg.Auth.ClientID != "" && !claims.VerifyAudience(cfg.Auth.ClientID, true) {
				span.AddEvent("audience mismatch")
				span.SetStatus(codes.Ok, "rejected token for wrong audience")
				return response.Unauthorized
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				span.RecordError(err)
				span.SetStatus(codes.Ok, "rejected token without numeric subject")
				return response.Unauthorized
			}

			span.SetAttributes(
				attribute.Int64("userID", userID),
				attribute.Bool("admin", claims.Admin),
			)
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "authenticated member")

			c.Set(CallerKey, Caller{
				UserID: userID,
				Handle: claims.Handle,
				Admin:  claims.Admin,
			})
			return next(c)
		}
	}
}
