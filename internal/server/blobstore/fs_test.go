package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return s
}

func TestFSStore_PutOpenDelete(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()
	payload := bytes.Repeat([]byte("abc"), 50_000)

	n, err := s.Put(ctx, "blob-1", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	rc, err := s.Open(ctx, "blob-1")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, s.Delete(ctx, "blob-1"))
	assert.ErrorIs(t, s.Delete(ctx, "blob-1"), ErrBlobNotFound)

	_, err = s.Open(ctx, "blob-1")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFSStore_PutReportsActualBytes(t *testing.T) {
	s := newFSStore(t)

	n, err := s.Put(context.Background(), "b", strings.NewReader("12345"), 999)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestFSStore_EmptyBlob(t *testing.T) {
	s := newFSStore(t)

	n, err := s.Put(context.Background(), "empty", strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	fi, err := os.Stat(filepath.Join(s.Root(), "empty"))
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

type failingReader struct {
	after int
	read  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read >= r.after {
		return 0, errors.New("client went away")
	}
	n := len(p)
	if n > r.after-r.read {
		n = r.after - r.read
	}
	r.read += n
	return n, nil
}

func TestFSStore_FailedPutLeavesNothing(t *testing.T) {
	s := newFSStore(t)

	_, err := s.Put(context.Background(), "partial", &failingReader{after: 100_000}, -1)
	require.Error(t, err)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temp file may remain")

	_, err = s.Open(context.Background(), "partial")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFSStore_CancelledContext(t *testing.T) {
	s := newFSStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "c", strings.NewReader("data"), 4)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFSStore_RejectsUnsafeNames(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`, ".hidden", "nul\x00"} {
		_, err := s.Put(ctx, name, strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, ErrInvalidName, "Put(%q)", name)
		_, err = s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, "Open(%q)", name)
		assert.ErrorIs(t, s.Delete(ctx, name), ErrInvalidName, "Delete(%q)", name)
	}
}

func TestNewFSStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	s, err := NewFSStore(root)
	require.NoError(t, err)

	fi, err := os.Stat(s.Root())
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}
