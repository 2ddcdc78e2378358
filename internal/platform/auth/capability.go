package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey       contextKey = "user_id"
	CapabilitiesKey contextKey = "capabilities"
)

// Capabilities granted to callers of the scheduling API. Permission
// evaluation itself is owned by an external identity system; the engine only
// checks the explicit capability set handed to it per request, never ambient
// session state.
const (
	CapSlotsRead          = "slots:read"
	CapAppointmentsRead   = "appointments:read"
	CapAppointmentsWrite  = "appointments:write"
	CapAppointmentsManage = "appointments:manage"
	CapTimeOffRead        = "timeoff:read"
)

type Claims struct {
	jwt.RegisteredClaims
	Capabilities []string `json:"capabilities"`
}

// Middleware validates the bearer token with the shared HMAC secret and
// stores the caller's identity and capability set in the request context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, CapabilitiesKey, claims.Capabilities)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevMiddleware grants the full capability set when no token is presented.
// Development only.
func DevMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				ctx := c.Request().Context()
				ctx = context.WithValue(ctx, UserIDKey, "dev-user")
				ctx = context.WithValue(ctx, CapabilitiesKey, []string{
					CapSlotsRead, CapAppointmentsRead, CapAppointmentsWrite,
					CapAppointmentsManage, CapTimeOffRead,
				})
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// RequireCapability rejects requests whose capability set does not include
// at least one of the given capabilities.
func RequireCapability(caps ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			granted := CapabilitiesFromContext(c.Request().Context())
			for _, required := range caps {
				for _, has := range granted {
					if has == required {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required capability: %s", strings.Join(caps, " or ")))
		}
	}
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func CapabilitiesFromContext(ctx context.Context) []string {
	caps, _ := ctx.Value(CapabilitiesKey).([]string)
	return caps
}
