package service

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor for all stored password hashes.
const hashCost = 12

// maxPasswordBytes is bcrypt's input limit. GenerateFromPassword rejects
// longer inputs outright, so the bound is enforced upstream in AssessStrength
// and never reaches the hasher as an error.
const maxPasswordBytes = 72

// PasswordHasher applies one-way password hashing with a fixed work factor.
// Hash and Verify are CPU-bound, hold no state, and are safe for concurrent
// use.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: hashCost}
}

// Hash returns the salted bcrypt hash of the plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether the plaintext matches the stored hash. A mismatch is
// a false return, never an error; the constant-time comparison is delegated
// to bcrypt.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// StrengthResult reports every rule a candidate password violates.
type StrengthResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// AssessStrength checks the candidate password against all strength rules.
// Every rule is evaluated so each violation appears in Errors; there is no
// short-circuiting. The minimum length counts characters, not bytes, so
// multibyte passwords are not over-counted; the maximum is a byte bound
// because that is what the hasher accepts.
func AssessStrength(plaintext string) StrengthResult {
	var errs []string

	if utf8.RuneCountInString(plaintext) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if len(plaintext) > maxPasswordBytes {
		errs = append(errs, "password must be at most 72 bytes")
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range plaintext {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	if !hasLower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !hasUpper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain a digit")
	}

	return StrengthResult{IsValid: len(errs) == 0, Errors: errs}
}
