package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/model"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the specified roles.  Callers pass
// model.Role values, so capability checks dispatch on the closed
// enumeration rather than string comparisons.  It assumes JWTAuth has
// already stored the parsed role in the context under "role"; requests
// with a missing or disallowed role are rejected with 403 Forbidden.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
