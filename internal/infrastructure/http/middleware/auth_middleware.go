package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/meetingnotes-team/meeting-notes/pkg/jwt"
)

const (
	// ClaimsContextKey is the echo context key for validated token claims
	ClaimsContextKey = "claims"
	// UserIDContextKey is the echo context key for the authenticated user ID
	UserIDContextKey = "user_id"
)

// EchoAuth returns an Echo middleware that validates a bearer JWT and sets
// "user_id" (uuid.UUID) and "claims" (*jwt.Claims) into the Echo context
func EchoAuth(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(UserIDContextKey, claims.UserID)

			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	// Try Authorization header first
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	// Try cookie as fallback
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}
