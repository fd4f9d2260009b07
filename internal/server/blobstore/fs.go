package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filevault/internal/filex"
)

// FSStore keeps each blob as a regular file directly under root.
type FSStore struct {
	root string
}

// NewFSStore creates root if needed and returns a store over it.
func NewFSStore(root string) (*FSStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("blob root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

func (s *FSStore) Root() string {
	return s.root
}

// Put writes to a temporary file in root, syncs it and renames it into
// place, so readers never observe a partial blob.
func (s *FSStore) Put(ctx context.Context, name string, r io.Reader, size int64) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := copyContext(ctx, tmp, r)
	if err != nil {
		return n, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		return n, fmt.Errorf("commit blob: %w", err)
	}
	committed = true

	return n, nil
}

func (s *FSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FSStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrBlobNotFound
		}
		return err
	}
	return nil
}

func (s *FSStore) path(name string) string {
	return filepath.Join(s.root, name)
}
