package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/testtrack/scheduling-system/internal/api/metrics"
	"github.com/testtrack/scheduling-system/internal/core/domain"
)

// Paths the guard knows about.
const (
	pathHome      = "/"
	pathLogin     = "/login"
	pathRegister  = "/register"
	pathDashboard = "/dashboard"
	pathAdmin     = "/admin"
	pathAPI       = "/api/protected"
)

// Decision is the guard's verdict for one request. Exactly one of Allow or a
// non-empty RedirectTo is set.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Decide evaluates the access rules for a path and the current session. It is
// pure: same inputs, same verdict, no side effects, re-evaluated per request.
//
// Rules, in order:
//  1. Authenticated callers do not see the login/register pages; they go home.
//  2. Anonymous callers do not see protected routes; they go to login with
//     the requested path preserved as callbackUrl.
//  3. Non-admins do not see /admin; they go to the dashboard.
//  4. Everything else passes through.
func Decide(path string, sess *domain.Session) Decision {
	authed := sess != nil
	authPage := strings.HasPrefix(path, pathLogin) || strings.HasPrefix(path, pathRegister)
	protected := strings.HasPrefix(path, pathDashboard) ||
		strings.HasPrefix(path, pathAdmin) ||
		strings.HasPrefix(path, pathAPI)

	if authPage && authed {
		return Decision{RedirectTo: pathHome}
	}

	if protected && !authed {
		return Decision{RedirectTo: pathLogin + "?callbackUrl=" + path}
	}

	if authed && strings.HasPrefix(path, pathAdmin) && sess.User.Role != domain.RoleAdmin {
		return Decision{RedirectTo: pathDashboard}
	}

	return Decision{Allow: true}
}

// Guard applies Decide at the network boundary. It must run after the Session
// middleware.
func Guard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := Decide(c.Request().URL.Path, CurrentSession(c))
			if d.Allow {
				return next(c)
			}
			metrics.GuardRedirectsTotal.WithLabelValues(redirectTarget(d.RedirectTo)).Inc()
			return c.Redirect(http.StatusFound, d.RedirectTo)
		}
	}
}

func redirectTarget(to string) string {
	switch {
	case strings.HasPrefix(to, pathLogin):
		return "login"
	case to == pathDashboard:
		return "dashboard"
	default:
		return "home"
	}
}
