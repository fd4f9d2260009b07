package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// overrideManager swaps individual repositories of a memory manager.
type overrideManager struct {
	*repomanager.MemoryRepositoryManager
	users users.Repository
	files files.Repository
}

func (m *overrideManager) Users(db dbx.DBTX) users.Repository {
	if m.users != nil {
		return m.users
	}
	return m.MemoryRepositoryManager.Users(db)
}

func (m *overrideManager) Files(db dbx.DBTX) files.Repository {
	if m.files != nil {
		return m.files
	}
	return m.MemoryRepositoryManager.Files(db)
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret", 24*time.Hour)
	require.NoError(t, err)
	return ts
}

func newTestUserService(t *testing.T, m repomanager.RepositoryManager) *UserService {
	t.Helper()
	return NewUserService(nil, m, auth.NewBcryptHasher(bcrypt.MinCost), newTokens(t), logging.Nop())
}

func mustRegister(t *testing.T, s *UserService, email string) *models.User {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{Email: email, Password: "pw-" + email})
	require.NoError(t, err)
	return res.User
}
