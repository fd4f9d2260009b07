// Package files is the metadata store for uploaded files.
package files

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

// Repository stores file records. GetByID and Delete return
// common.ErrorNotFound for an unknown id; ownership is checked by callers.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	// ListByOwner returns the owner's files, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
	Delete(ctx context.Context, id string) error
}
