package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/testtrack/scheduling-system/internal/core/domain"
)

// ErrNotFound is returned by FindOne when no user matches the filter.
var ErrNotFound = errors.New("user not found")

// FailureCause classifies a repository failure so the service layer can map
// it onto the error taxonomy without sniffing message text.
type FailureCause int

const (
	// CauseUnknown covers failures the adapter could not classify.
	CauseUnknown FailureCause = iota
	// CauseConnectivity covers network failures, timeouts and unreachable or
	// unconfigured databases.
	CauseConnectivity
	// CauseSchemaViolation covers store-level document validation rejections.
	CauseSchemaViolation
	// CauseConstraintViolation covers unique-index violations, e.g. losing
	// the register check-then-insert race on the email index.
	CauseConstraintViolation
)

// RepositoryError wraps a low-level store failure with its classified cause.
type RepositoryError struct {
	Cause FailureCause
	Op    string
	Err   error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// UserFilter selects users by exact email and, optionally, account status.
type UserFilter struct {
	Email  string
	Status domain.Status
}

// UserRepository is the persistence contract the auth core consumes. The
// hosting application owns the store's lifecycle; implementations must signal
// distinguishable failure causes via RepositoryError.
type UserRepository interface {
	// FindOne returns the single user matching the filter, or ErrNotFound.
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	// Create persists a new user and returns it with its assigned ID.
	// Email uniqueness is enforced by the store; a violation surfaces as
	// CauseConstraintViolation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// CountDocuments returns the number of users matching the filter.
	CountDocuments(ctx context.Context, filter UserFilter) (int64, error)
}
