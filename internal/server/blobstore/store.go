// Package blobstore holds file bytes under opaque server-generated names.
// Backends: the local filesystem and S3-compatible object storage.
package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidName  = errors.New("invalid blob name")
)

// Store is the blob backend used by the file service.
type Store interface {
	// Put stores r under name and returns the number of bytes written. size
	// is the declared length or -1 when unknown; the returned count is what
	// was actually persisted. A blob becomes visible only once complete.
	Put(ctx context.Context, name string, r io.Reader, size int64) (int64, error)
	// Open returns a reader over the blob. The caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName rejects names that could escape the store root or collide
// with in-progress temporary files.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidName
	case strings.HasPrefix(name, "."):
		return ErrInvalidName
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrInvalidName
	}
	return nil
}

const copyChunkSize = 32 * 1024

// copyContext is io.Copy that checks ctx between chunks.
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, copyChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
