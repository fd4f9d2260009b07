// Package users is the credential store: user records keyed by id with a
// unique email.
package users

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

// Repository stores users. Create fails with common.ErrEmailTaken when the
// email is already registered; lookups return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
