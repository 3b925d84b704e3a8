package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/testtrack/scheduling-system/internal/api/metrics"
	"github.com/testtrack/scheduling-system/internal/api/middleware"
	"github.com/testtrack/scheduling-system/internal/core/domain"
	"github.com/testtrack/scheduling-system/internal/core/ports"
	"github.com/testtrack/scheduling-system/internal/core/service"
)

// LoginLimiter throttles repeated credential failures per account key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type AuthHandler struct {
	auth     ports.AuthService
	sessions *service.SessionIssuer
	limiter  LoginLimiter
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessions *service.SessionIssuer, limiter LoginLimiter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, limiter: limiter, log: log}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin scheduler driver reviewer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string           `json:"token,omitempty"`
	User  *domain.SafeUser `json:"user,omitempty"`
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrValidation("invalid payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login validates credentials, mints a session token, and sets the session
// cookie. The token is also returned for bearer-style API clients.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrValidation("invalid payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	if h.limiter != nil {
		ok, err := h.limiter.Allow(ctx, req.Email)
		if err != nil {
			// Fail open: throttling is best effort, login must stay available.
			h.log.Warn().Err(err).Msg("login limiter unavailable")
		}
		if !ok {
			metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
	}

	user, err := h.auth.ValidateLogin(ctx, ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	token, err := h.sessions.Issue(user.SessionUser())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return domain.ErrInternal("login failed, please try again", err)
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, req.Email); err != nil {
			h.log.Warn().Err(err).Msg("login limiter reset failed")
		}
	}

	middleware.SetSessionCookie(c, token)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Logout clears the session cookie. Token verification is stateless, so
// sign-out is purely a client-side credential drop.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

type checkEmailResponse struct {
	Exists bool `json:"exists"`
}

// CheckEmail reports whether an email is already registered, for
// registration-form feedback.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Email to check"
// @Success      200    {object}  checkEmailResponse
// @Router       /api/auth/check-email [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return domain.ErrValidation("email is required", map[string]any{"field": "email"})
	}

	exists, err := h.auth.IsEmailExists(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkEmailResponse{Exists: exists})
}

// Me returns the caller's session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Session
// @Failure      401  {object}  map[string]any
// @Router       /api/protected/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, sess)
}

type permissionsResponse struct {
	Role        domain.Role `json:"role"`
	Permissions []string    `json:"permissions"`
	IsAdmin     bool        `json:"is_admin"`
}

// Permissions returns the caller's capability set from the permission matrix.
//
// @Summary      Current permissions
// @Tags         session
// @Produce      json
// @Success      200  {object}  permissionsResponse
// @Router       /api/protected/permissions [get]
func (h *AuthHandler) Permissions(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, permissionsResponse{
		Role:        sess.User.Role,
		Permissions: domain.Permissions(sess.User.Role),
		IsAdmin:     domain.IsAdmin(sess.User.Role),
	})
}

// LookupUser returns the safe projection of a user by email. Admin only.
//
// @Summary      Look up a user by email
// @Tags         admin
// @Produce      json
// @Param        email  query     string  true  "Email to look up"
// @Success      200    {object}  domain.SafeUser
// @Failure      404    {object}  map[string]any
// @Router       /api/protected/users/lookup [get]
func (h *AuthHandler) LookupUser(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return domain.ErrValidation("email is required", map[string]any{"field": "email"})
	}

	user, err := h.auth.FindUserByEmail(c.Request().Context(), email)
	if err != nil {
		return err
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

func registerResult(err error) string {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) && authErr.Code == domain.CodeDuplicateEmail {
		return "duplicate_email"
	}
	return "error"
}

func loginResult(err error) string {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) && authErr.Code == domain.CodeInvalidCredentials {
		return "invalid_credentials"
	}
	return "error"
}
