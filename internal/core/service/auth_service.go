package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/testtrack/scheduling-system/internal/core/domain"
	"github.com/testtrack/scheduling-system/internal/core/ports"
)

// AuthService implements registration and login-credential validation on top
// of an injected repository and hasher.
type AuthService struct {
	repo   ports.UserRepository
	hasher *PasswordHasher
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher *PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, log: log}
}

// Register creates a new account. Role defaults to driver when unspecified;
// status is always forced to active. A taken email fails with
// DUPLICATE_EMAIL before any insert is attempted.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.SafeUser, error) {
	if strength := AssessStrength(in.Password); !strength.IsValid {
		return nil, domain.ErrValidation("password does not meet strength requirements",
			map[string]any{"errors": strength.Errors})
	}

	if in.Role != "" && !in.Role.Valid() {
		return nil, domain.ErrValidation("unknown role", map[string]any{"role": in.Role})
	}

	_, err := s.repo.FindOne(ctx, ports.UserFilter{Email: in.Email})
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail(in.Email)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, s.classify(err, "register", "registration failed, please try again")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.ErrInternal("registration failed, please try again", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleDriver
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The pre-check races with concurrent registrations; the store's
		// unique index is the authoritative guard. Losing the race is still
		// a duplicate email to the caller.
		var repoErr *ports.RepositoryError
		if errors.As(err, &repoErr) && repoErr.Cause == ports.CauseConstraintViolation {
			return nil, domain.ErrDuplicateEmail(in.Email)
		}
		return nil, s.classify(err, "register", "registration failed, please try again")
	}

	safe := created.Safe()
	return &safe, nil
}

// ValidateLogin verifies credentials against active accounts only. A missing
// account, a suspended or inactive account, and a wrong password all fail
// with the same INVALID_CREDENTIALS error so the caller learns nothing about
// which factor was wrong.
func (s *AuthService) ValidateLogin(ctx context.Context, creds ports.Credentials) (*domain.SafeUser, error) {
	user, err := s.repo.FindOne(ctx, ports.UserFilter{Email: creds.Email, Status: domain.StatusActive})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials()
		}
		return nil, s.classify(err, "login", "login failed, please try again")
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials()
	}

	safe := user.Safe()
	return &safe, nil
}

// FindUserByEmail returns the safe projection of the user with the given
// email, or nil when no such user exists.
func (s *AuthService) FindUserByEmail(ctx context.Context, email string) (*domain.SafeUser, error) {
	user, err := s.repo.FindOne(ctx, ports.UserFilter{Email: email})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil
		}
		return nil, domain.ErrDatabase("failed to look up user", err)
	}
	safe := user.Safe()
	return &safe, nil
}

// IsEmailExists reports whether an account with the given email exists.
func (s *AuthService) IsEmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.repo.CountDocuments(ctx, ports.UserFilter{Email: email})
	if err != nil {
		return false, domain.ErrDatabase("failed to check email", err)
	}
	return n > 0, nil
}

// classify translates sub-service failures into the closed error taxonomy.
// Business errors pass through untouched; repository failures are bucketed by
// their typed cause; anything else falls back to INTERNAL_ERROR. This is the
// only place the translation happens.
func (s *AuthService) classify(err error, op, fallback string) error {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	var repoErr *ports.RepositoryError
	if errors.As(err, &repoErr) {
		switch repoErr.Cause {
		case ports.CauseConnectivity:
			return domain.ErrDatabase("database connection failed, please try again later", repoErr)
		case ports.CauseSchemaViolation, ports.CauseConstraintViolation:
			return domain.ErrValidation("stored data failed validation", map[string]any{"op": repoErr.Op})
		}
	}

	s.log.Error().Err(err).Str("op", op).Msg("unclassified auth failure")
	return domain.ErrInternal(fallback, err)
}
