package ports

import "github.com/adminhub/user-accounts/internal/core/domain"

// PasswordHasher hashes and verifies passwords. A mismatch is a false result, not an error.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(claims domain.Claims) (string, error)
	// Verify returns domain.ErrInvalidToken for any malformed, forged or expired token.
	Verify(token string) (*domain.Claims, error)
}
