package domain

import "fmt"

// ErrorCode is a machine-readable code for an authentication failure.
// Callers must dispatch on the code, never on the message: messages are
// end-user facing and may be localised.
type ErrorCode string

// The closed set of auth error codes. Nothing else crosses the service
// boundary.
const (
	CodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeValidationError    ErrorCode = "VALIDATION_ERROR"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// AuthError is the structured error type surfaced by the auth service.
// Details carry server-side diagnostic context and are stripped from
// responses outside development.
type AuthError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *AuthError) Unwrap() error { return e.cause }

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AuthError) WithDetail(key string, value any) *AuthError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// ErrDuplicateEmail reports a registration attempt against an email that is
// already taken.
func ErrDuplicateEmail(email string) *AuthError {
	return &AuthError{
		Code:    CodeDuplicateEmail,
		Message: "this email is already registered",
		Details: map[string]any{"email": email},
	}
}

// ErrInvalidCredentials covers every credential failure with one message so
// callers cannot tell which factor was wrong, nor whether the account exists.
func ErrInvalidCredentials() *AuthError {
	return &AuthError{
		Code:    CodeInvalidCredentials,
		Message: "email or password is incorrect",
	}
}

// ErrDatabase reports a connectivity or configuration failure below the
// service boundary.
func ErrDatabase(message string, cause error) *AuthError {
	return &AuthError{Code: CodeDatabaseError, Message: message, cause: cause}
}

// ErrValidation reports a store-level or input-level validation rejection.
func ErrValidation(message string, details map[string]any) *AuthError {
	return &AuthError{Code: CodeValidationError, Message: message, Details: details}
}

// ErrInternal is the fallback for anything unclassified. The cause is kept
// for logs only.
func ErrInternal(message string, cause error) *AuthError {
	return &AuthError{Code: CodeInternalError, Message: message, cause: cause}
}
