package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adminhub/user-accounts/internal/core/domain"
)

type sessionClaims struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 session tokens.
// A zero ttl issues tokens without an expiry.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *JWTService) Issue(claims domain.Claims) (string, error) {
	now := s.now()
	sc := sessionClaims{
		ID:       claims.UserID,
		UserName: claims.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		sc.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sc).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Verify(token string) (*domain.Claims, error) {
	var sc sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &sc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithStrictDecoding())
	if err != nil || !parsed.Valid || sc.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Claims{UserID: sc.ID, UserName: sc.UserName}, nil
}
