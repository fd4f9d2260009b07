// Package auth issues and verifies identity tokens, hashes passwords and
// guards requests that need an authenticated user.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the subject user id in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs HS256 tokens with a fixed lifetime. Expiry is set at
// issue and never extended.
type TokenService struct {
	secretKey        []byte
	validityDuration time.Duration
	now              func() time.Time
}

// NewTokenService refuses an empty secret so a misconfigured process cannot
// serve traffic with guessable tokens.
func NewTokenService(secretKey string, validityDuration time.Duration) (*TokenService, error) {
	if secretKey == "" {
		return nil, errors.New("token signing secret is not configured")
	}
	if validityDuration <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %s", validityDuration)
	}
	return &TokenService{
		secretKey:        []byte(secretKey),
		validityDuration: validityDuration,
		now:              time.Now,
	}, nil
}

// Issue returns a signed token for userID expiring validityDuration from now.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validityDuration)),
		},
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify returns the subject of a valid token. It fails with
// common.ErrTokenExpired once the expiry instant is reached and with
// common.ErrInvalidToken for anything else wrong with the token.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
