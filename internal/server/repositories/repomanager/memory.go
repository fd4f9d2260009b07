package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out one shared in-memory repository of each
// kind regardless of the DBTX passed in. It has no schema to migrate.
// NewApp always builds a PostgresRepositoryManager; this manager is the
// test double used by the services and httpserver tests.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
	files *files.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		files: files.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Files(dbx.DBTX) files.Repository {
	return m.files
}

// UserStore exposes the concrete user repository for test setup.
func (m *MemoryRepositoryManager) UserStore() *users.MemoryRepository {
	return m.users
}
