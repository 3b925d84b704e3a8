package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/testtrack/scheduling-system/internal/core/domain"
	"github.com/testtrack/scheduling-system/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User

	findErr   error
	createErr error
	countErr  error

	createCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindOne(_ context.Context, f ports.UserFilter) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[f.Email]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if f.Status != "" && u.Status != f.Status {
		return nil, ports.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	copy := cloneUser(user)
	copy.ID = "id_" + user.Email
	r.users[copy.Email] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) CountDocuments(_ context.Context, f ports.UserFilter) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	if _, ok := r.users[f.Email]; ok {
		return 1, nil
	}
	return 0, nil
}

func newTestService(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, NewPasswordHasher(), zerolog.Nop())
}

func authCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *domain.AuthError, got %T: %v", err, err)
	}
	return authErr.Code
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, status domain.Status) {
	t.Helper()
	hash, err := NewPasswordHasher().Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.users[email] = &domain.User{
		ID:           "id_" + email,
		Name:         "Seeded User",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleDriver,
		Status:       status,
	}
}

// assertNoSecretMaterial serializes the safe projection the way a response
// would and checks no password field of any spelling leaks through.
func assertNoSecretMaterial(t *testing.T, user *domain.SafeUser) {
	t.Helper()
	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal safe user: %v", err)
	}
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("safe user leaks secret material: %s", raw)
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice Chen",
		Email:    "alice@example.com",
		Password: "Str0ngPass",
		Role:     domain.RoleScheduler,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" || user.Role != domain.RoleScheduler {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Status != domain.StatusActive {
		t.Fatalf("status must be forced to active, got %s", user.Status)
	}

	stored := repo.users["alice@example.com"]
	if stored.PasswordHash == "Str0ngPass" {
		t.Fatalf("password must be hashed before persisting")
	}
	if !NewPasswordHasher().Verify("Str0ngPass", stored.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}
}

func TestAuthService_Register_DefaultRoleIsDriver(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Bob Li",
		Email:    "bob@example.com",
		Password: "Str0ngPass",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleDriver {
		t.Fatalf("expected default role driver, got %s", user.Role)
	}
}

func TestAuthService_Register_DuplicateEmailNoInsert(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	seedUser(t, repo, "taken@example.com", "Str0ngPass", domain.StatusActive)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Impostor",
		Email:    "taken@example.com",
		Password: "Str0ngPass",
	})
	if code := authCode(t, err); code != domain.CodeDuplicateEmail {
		t.Fatalf("expected DUPLICATE_EMAIL, got %s", code)
	}
	if repo.createCalls != 0 {
		t.Fatalf("create must not be invoked for a duplicate email")
	}
}

func TestAuthService_Register_WeakPasswordReportsAllViolations(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Weak",
		Email:    "weak@example.com",
		Password: "abc",
	})

	var authErr *domain.AuthError
	if !errors.As(err, &authErr) || authErr.Code != domain.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	violations, _ := authErr.Details["errors"].([]string)
	if len(violations) != 3 {
		t.Fatalf("expected 3 strength violations, got %v", authErr.Details["errors"])
	}
}

func TestAuthService_Register_OverlongPasswordIsValidationError(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	// 80 bytes is past the hasher's 72-byte limit. The strength check must
	// reject it up front; it must never surface as an INTERNAL_ERROR from
	// bcrypt.
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Longfellow",
		Email:    "long@example.com",
		Password: "Aa1" + strings.Repeat("x", 77),
	})
	if code := authCode(t, err); code != domain.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
	if repo.createCalls != 0 {
		t.Fatalf("create must not be invoked for an overlong password")
	}
}

func TestAuthService_Register_LostRaceIsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	// Pre-check passes (no user), but the insert hits the unique index:
	// another registration won the race.
	repo.createErr = &ports.RepositoryError{
		Cause: ports.CauseConstraintViolation,
		Op:    "insert user",
		Err:   errors.New("E11000 duplicate key error"),
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Racer",
		Email:    "racer@example.com",
		Password: "Str0ngPass",
	})
	if code := authCode(t, err); code != domain.CodeDuplicateEmail {
		t.Fatalf("lost uniqueness race must surface as DUPLICATE_EMAIL, got %s", code)
	}
}

func TestAuthService_Register_ConnectivityFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = &ports.RepositoryError{
		Cause: ports.CauseConnectivity,
		Op:    "find user",
		Err:   errors.New("connection refused"),
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "Str0ngPass",
	})
	if code := authCode(t, err); code != domain.CodeDatabaseError {
		t.Fatalf("expected DATABASE_ERROR, got %s", code)
	}
}

func TestAuthService_Register_UnknownFailureIsInternal(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("something strange")
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Dave",
		Email:    "dave@example.com",
		Password: "Str0ngPass",
	})
	if code := authCode(t, err); code != domain.CodeInternalError {
		t.Fatalf("expected INTERNAL_ERROR fallback, got %s", code)
	}
}

func TestAuthService_Register_NoHashInSafeUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Eve Zhang",
		Email:    "eve@example.com",
		Password: "Str0ngPass",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// SafeUser has no hash field at all; verify the serialized form as the
	// boundary would see it.
	assertNoSecretMaterial(t, user)
}

func TestAuthService_ValidateLogin_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	seedUser(t, repo, "frank@example.com", "G00dPassword", domain.StatusActive)

	user, err := svc.ValidateLogin(context.Background(), ports.Credentials{
		Email:    "frank@example.com",
		Password: "G00dPassword",
	})
	if err != nil {
		t.Fatalf("ValidateLogin returned error: %v", err)
	}
	if user.Email != "frank@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	assertNoSecretMaterial(t, user)
}

func TestAuthService_ValidateLogin_IndistinguishableFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	seedUser(t, repo, "grace@example.com", "G00dPassword", domain.StatusActive)
	seedUser(t, repo, "hank@example.com", "G00dPassword", domain.StatusSuspended)
	seedUser(t, repo, "iris@example.com", "G00dPassword", domain.StatusInactive)

	cases := []struct {
		name  string
		creds ports.Credentials
	}{
		{"wrong password", ports.Credentials{Email: "grace@example.com", Password: "WrongPass1"}},
		{"unknown email", ports.Credentials{Email: "ghost@example.com", Password: "G00dPassword"}},
		{"suspended account", ports.Credentials{Email: "hank@example.com", Password: "G00dPassword"}},
		{"inactive account", ports.Credentials{Email: "iris@example.com", Password: "G00dPassword"}},
	}

	var messages []string
	for _, tc := range cases {
		_, err := svc.ValidateLogin(context.Background(), tc.creds)
		var authErr *domain.AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("%s: expected AuthError, got %v", tc.name, err)
		}
		if authErr.Code != domain.CodeInvalidCredentials {
			t.Fatalf("%s: expected INVALID_CREDENTIALS, got %s", tc.name, authErr.Code)
		}
		messages = append(messages, authErr.Message)
	}

	// All failure modes must be byte-identical to the caller.
	for _, msg := range messages {
		if msg != messages[0] {
			t.Fatalf("credential failures must be indistinguishable: %q vs %q", msg, messages[0])
		}
	}
}

func TestAuthService_ValidateLogin_ConnectivityIsDatabaseError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = &ports.RepositoryError{
		Cause: ports.CauseConnectivity,
		Op:    "find user",
		Err:   errors.New("server selection timeout"),
	}
	svc := newTestService(repo)

	_, err := svc.ValidateLogin(context.Background(), ports.Credentials{
		Email:    "any@example.com",
		Password: "G00dPassword",
	})
	if code := authCode(t, err); code != domain.CodeDatabaseError {
		t.Fatalf("connectivity failure must be DATABASE_ERROR, got %s", code)
	}
}

func TestAuthService_FindUserByEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	seedUser(t, repo, "judy@example.com", "G00dPassword", domain.StatusActive)

	user, err := svc.FindUserByEmail(context.Background(), "judy@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail returned error: %v", err)
	}
	if user == nil || user.Email != "judy@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	missing, err := svc.FindUserByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("missing user must not be an error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}

	repo.findErr = &ports.RepositoryError{Cause: ports.CauseConnectivity, Op: "find user", Err: errors.New("down")}
	_, err = svc.FindUserByEmail(context.Background(), "judy@example.com")
	if code := authCode(t, err); code != domain.CodeDatabaseError {
		t.Fatalf("expected DATABASE_ERROR, got %s", code)
	}
}

func TestAuthService_IsEmailExists(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	seedUser(t, repo, "kate@example.com", "G00dPassword", domain.StatusActive)

	exists, err := svc.IsEmailExists(context.Background(), "kate@example.com")
	if err != nil || !exists {
		t.Fatalf("expected exists=true, got %v, %v", exists, err)
	}

	exists, err = svc.IsEmailExists(context.Background(), "nobody@example.com")
	if err != nil || exists {
		t.Fatalf("expected exists=false, got %v, %v", exists, err)
	}

	repo.countErr = &ports.RepositoryError{Cause: ports.CauseConnectivity, Op: "count users", Err: errors.New("down")}
	_, err = svc.IsEmailExists(context.Background(), "kate@example.com")
	if code := authCode(t, err); code != domain.CodeDatabaseError {
		t.Fatalf("expected DATABASE_ERROR, got %s", code)
	}
}
