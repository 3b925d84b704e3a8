package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/testtrack/scheduling-system/internal/core/domain"
)

// errorBody is the coded error payload. Machine dispatch uses Code; Message
// is the end-user string.
type errorBody struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details map[string]any   `json:"details,omitempty"`
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error errorBody `json:"error"`
}

// Boundary codes for failures raised by the HTTP layer itself (routing,
// binding, auth middleware). They sit outside the service taxonomy.
const (
	codeUnauthorized domain.ErrorCode = "UNAUTHORIZED"
	codeForbidden    domain.ErrorCode = "FORBIDDEN"
	codeNotFound     domain.ErrorCode = "NOT_FOUND"
	codeRateLimited  domain.ErrorCode = "RATE_LIMITED"
)

// statusForCode maps the closed error taxonomy onto HTTP statuses.
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeDuplicateEmail:
		return http.StatusConflict
	case domain.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case domain.CodeValidationError:
		return http.StatusBadRequest
	case domain.CodeDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// codeForStatus picks the boundary code for an HTTP-layer failure.
func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return domain.CodeValidationError
	case http.StatusUnauthorized:
		return codeUnauthorized
	case http.StatusForbidden:
		return codeForbidden
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusTooManyRequests:
		return codeRateLimited
	default:
		return domain.CodeInternalError
	}
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps AuthError codes to their HTTP statuses in one place.
//   - Strips diagnostic details outside development.
//   - Logs unexpected errors internally without leaking them to the client.
//   - Renders a consistent JSON envelope: {"error": {"code", "message"}}.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			body := errorBody{Code: authErr.Code, Message: authErr.Message}
			if development {
				body.Details = authErr.Details
			}
			_ = c.JSON(statusForCode(authErr.Code), errorResponse{Error: body})
			return
		}

		// Echo's own errors (bind failures, 404 from router, etc.) and
		// middleware rejections.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: errorBody{
				Code:    codeForStatus(he.Code),
				Message: fmt.Sprintf("%v", he.Message),
			}})
			return
		}

		// Unexpected error: log the real cause, return a generic message.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")

		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    domain.CodeInternalError,
			Message: "internal server error",
		}})
	}
}
