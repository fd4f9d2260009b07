package files

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/models"
)

// MemoryRepository keeps file records in process memory. It is not a
// production backend: the server always runs on Postgres, and this type
// backs the service and HTTP tests through repomanager.MemoryRepositoryManager.
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[string]*models.File
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{files: make(map[string]*models.File)}
}

func (r *MemoryRepository) Create(_ context.Context, file *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *file
	r.files[file.ID] = &stored
	return file, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.File{}
	for _, f := range r.files {
		if f.OwnerID == ownerID {
			cp := *f
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].UploadedAt.After(result[j].UploadedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.files, id)
	return nil
}
