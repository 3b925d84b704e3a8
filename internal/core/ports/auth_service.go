package ports

import (
	"context"

	"github.com/testtrack/scheduling-system/internal/core/domain"
)

// RegisterInput carries a validated registration request. Role may be empty;
// the service applies the default.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Credentials is a transient login input. It is consumed once by validation
// and never stored.
type Credentials struct {
	Email    string
	Password string
}

// AuthService is the application-facing contract for registration and
// credential validation. All failures are *domain.AuthError values.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.SafeUser, error)
	ValidateLogin(ctx context.Context, creds Credentials) (*domain.SafeUser, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.SafeUser, error)
	IsEmailExists(ctx context.Context, email string) (bool, error)
}
