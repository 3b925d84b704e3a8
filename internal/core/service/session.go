package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/testtrack/scheduling-system/internal/core/domain"
)

// SessionMaxAge is the fixed lifetime of a session token. The window is
// sliding: every authenticated request reissues a token with a full window,
// but any individual token dies 30 days after it was signed.
const SessionMaxAge = 30 * 24 * time.Hour

const sessionIssuerName = "scheduling-system"

// SessionClaims carries the identity payload of a session token. ID and Role
// are the authoritative custom claims; name, email and avatar are profile
// claims so the session can be rebuilt without a store round-trip.
type SessionClaims struct {
	ID     string      `json:"id"`
	Role   domain.Role `json:"role"`
	Name   string      `json:"name,omitempty"`
	Email  string      `json:"email,omitempty"`
	Avatar string      `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// SessionIssuer mints and decodes signed session tokens. Decoding is
// stateless and synchronous; it never touches the repository.
type SessionIssuer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string) *SessionIssuer {
	return &SessionIssuer{
		secret: []byte(secret),
		maxAge: SessionMaxAge,
		now:    time.Now,
	}
}

// Issue signs a fresh token for the identity with a full session window.
func (s *SessionIssuer) Issue(user domain.SessionUser) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		ID:     user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    sessionIssuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Decode reconstructs the session carried by the token. It fails closed: an
// invalid signature, a non-HMAC algorithm, expiry, or any other parse problem
// yields nil, which callers treat as "no session". No error is ever surfaced.
func (s *SessionIssuer) Decode(tokenString string) *domain.Session {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.ID == "" {
		return nil
	}

	return &domain.Session{
		User: domain.SessionUser{
			ID:     claims.ID,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   claims.Role,
			Avatar: claims.Avatar,
		},
	}
}

// Refresh reissues a token for an already-decoded session, restarting the
// sliding window.
func (s *SessionIssuer) Refresh(sess *domain.Session) (string, error) {
	return s.Issue(sess.User)
}
