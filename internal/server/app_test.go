package server

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filevault/internal/server/blobstore"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "app-test-secret"
	c.BlobRoot = filepath.Join(t.TempDir(), "uploads")
	c.LogLevel = "error"
	return c
}

func stubOpenDB(t *testing.T, fn func(context.Context, string) (*sql.DB, error)) {
	t.Helper()
	orig := openDB
	openDB = fn
	t.Cleanup(func() { openDB = orig })
}

func TestNewApp_RefusesEmptySecret(t *testing.T) {
	c := testConfig(t)
	c.SecretKey = ""

	called := false
	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) {
		called = true
		return nil, errors.New("unreachable")
	})

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SecretKey")
	assert.False(t, called, "database must not be touched with an invalid config")
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := testConfig(t)
	c.LogLevel = "loud"

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestNewApp_DBError(t *testing.T) {
	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})

	_, err := NewApp(context.Background(), testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_MigrationErrorClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectClose()

	stubOpenDB(t, func(context.Context, string) (*sql.DB, error) { return db, nil })

	_, err = NewApp(context.Background(), testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBlobStore(t *testing.T) {
	c := testConfig(t)

	s, err := newBlobStore(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.FSStore{}, s)

	c.BlobBackend = config.BlobBackendS3
	s, err = newBlobStore(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.S3Store{}, s)

	c.BlobBackend = "tape"
	_, err = newBlobStore(context.Background(), c)
	assert.Error(t, err)
}
