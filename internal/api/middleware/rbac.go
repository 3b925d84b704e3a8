package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/testtrack/scheduling-system/internal/api/metrics"
	"github.com/testtrack/scheduling-system/internal/core/domain"
)

// RequirePermission gates a route on a single capability.
func RequirePermission(capability string) echo.MiddlewareFunc {
	return requireFunc(func(role domain.Role) bool {
		return domain.HasPermission(role, capability)
	}, capability)
}

// RequireAnyPermission gates a route on holding at least one of the
// capabilities.
func RequireAnyPermission(capabilities ...string) echo.MiddlewareFunc {
	return requireFunc(func(role domain.Role) bool {
		return domain.HasAnyPermission(role, capabilities)
	}, "any")
}

// RequireAllPermissions gates a route on holding every capability.
func RequireAllPermissions(capabilities ...string) echo.MiddlewareFunc {
	return requireFunc(func(role domain.Role) bool {
		return domain.HasAllPermissions(role, capabilities)
	}, "all")
}

// RequireAdmin gates a route on the administrator role.
func RequireAdmin() echo.MiddlewareFunc {
	return requireFunc(domain.IsAdmin, "admin")
}

func requireFunc(allowed func(domain.Role) bool, label string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !allowed(sess.User.Role) {
				metrics.PermissionDenialsTotal.WithLabelValues(label).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
