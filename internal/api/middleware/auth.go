package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/testtrack/scheduling-system/internal/api/metrics"
	"github.com/testtrack/scheduling-system/internal/core/domain"
	"github.com/testtrack/scheduling-system/internal/core/service"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

const sessionContextKey = "session"

// Session decodes the session token on each request and stores the resulting
// session in the echo context. The cookie is checked first, then a bearer
// Authorization header. Decoding fails closed: an invalid or expired token
// leaves the request anonymous, it is never an error.
//
// The session window is sliding: a request that carried a valid cookie gets a
// freshly signed cookie with a full window.
func Session(issuer *service.SessionIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, fromCookie := tokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			sess := issuer.Decode(token)
			if sess == nil {
				return next(c)
			}
			c.Set(sessionContextKey, sess)

			if fromCookie {
				if fresh, err := issuer.Refresh(sess); err == nil {
					SetSessionCookie(c, fresh)
					metrics.TokenRefreshesTotal.Inc()
				}
			}

			return next(c)
		}
	}
}

// CurrentSession returns the session stored by the Session middleware, or nil
// for anonymous requests.
func CurrentSession(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionContextKey).(*domain.Session)
	return sess
}

// SetSessionCookie attaches the signed token as an HttpOnly session cookie.
func SetSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.SessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie, signing the caller out.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenFromRequest(c echo.Context) (token string, fromCookie bool) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], false
}
