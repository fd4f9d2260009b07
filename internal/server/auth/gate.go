package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/models"
)

// UserResolver looks a user up by id. It returns common.ErrorNotFound when
// the user does not exist.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenVerifier is the part of TokenService the gate needs.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Gate turns an Authorization header into a resolved user. Every rejection
// wraps common.ErrUnauthenticated; there is no anonymous fallback.
type Gate struct {
	tokens TokenVerifier
	users  UserResolver
}

func NewGate(tokens TokenVerifier, users UserResolver) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate checks header and re-resolves the token subject, so deleting
// a user invalidates all of its outstanding tokens.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, common.ErrNoToken
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrInvalidToken)
	}

	user, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
