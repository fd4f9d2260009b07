package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/blobstore"
	"github.com/dmitrijs2005/filevault/internal/server/metrics"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// IncomingFile is an upload as received by the transport layer.
type IncomingFile struct {
	Body         io.Reader
	OriginalName string
	MimeType     string
	// Size is the declared length, or -1 when unknown.
	Size int64
}

// Download is an open file ready to be streamed. Body must be closed.
type Download struct {
	File *models.File
	Body io.ReadCloser
}

// DeleteResult reports the secondary blob removal of a successful delete.
// A non-nil BlobErr means the blob was left behind.
type DeleteResult struct {
	BlobErr error
}

// FileService binds stored files to their owners and mediates all access
// to their bytes.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	metrics     metrics.Recorder
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, rec metrics.Recorder, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		metrics:     rec,
		logger:      logger.With("module", "files"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Upload stores the bytes first and records them second, so a record never
// points at a missing blob.
func (s *FileService) Upload(ctx context.Context, ownerID string, in IncomingFile) (*models.File, error) {
	if in.Body == nil {
		return nil, &ValidationError{Field: "file", Message: "No file uploaded"}
	}
	// Name and type are stored as sent; blank only decides rejection or default.
	if strings.TrimSpace(in.OriginalName) == "" {
		return nil, &ValidationError{Field: "file", Message: "File name is required"}
	}
	mimeType := in.MimeType
	if strings.TrimSpace(mimeType) == "" {
		mimeType = common.DefaultMimeType
	}

	storedName := s.newID()
	written, err := s.blobs.Put(ctx, storedName, in.Body, in.Size)
	if err != nil {
		s.metrics.FileOperation("upload", metrics.ResultError)
		s.logger.Error(ctx, "blob write failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorageWriteFailed, err)
	}
	if in.Size >= 0 && written != in.Size {
		s.logger.Warn(ctx, "upload size differs from declared size",
			"stored_name", storedName, "declared", in.Size, "written", written)
	}

	record, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		ID:           s.newID(),
		StoredName:   storedName,
		OriginalName: in.OriginalName,
		MimeType:     mimeType,
		SizeBytes:    written,
		OwnerID:      ownerID,
		UploadedAt:   s.now().UTC(),
	})
	if err != nil {
		s.metrics.FileOperation("upload", metrics.ResultError)
		s.logger.Error(ctx, "file record create failed after blob write",
			"stored_name", storedName, "owner_id", ownerID, "error", err)
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), storedName); delErr != nil {
			s.metrics.OrphanBlob(metrics.OrphanUpload)
			s.logger.Warn(ctx, "orphan blob left behind", "stored_name", storedName, "error", delErr)
		}
		return nil, fmt.Errorf("error creating file record: %w", err)
	}

	s.metrics.FileOperation("upload", metrics.ResultOK)
	s.metrics.BytesIn(written)
	s.logger.Info(ctx, "file uploaded", "file_id", record.ID, "owner_id", ownerID, "size", written)

	return record, nil
}

// List returns ownerID's files, newest first.
func (s *FileService) List(ctx context.Context, ownerID string) ([]*models.File, error) {
	list, err := s.repomanager.Files(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		s.metrics.FileOperation("list", metrics.ResultError)
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	if list == nil {
		list = []*models.File{}
	}
	s.metrics.FileOperation("list", metrics.ResultOK)
	return list, nil
}

// Stream opens the file's bytes for its owner.
func (s *FileService) Stream(ctx context.Context, ownerID, fileID string) (*Download, error) {
	file, err := s.resolve(ctx, "download", ownerID, fileID)
	if err != nil {
		return nil, err
	}

	body, err := s.blobs.Open(ctx, file.StoredName)
	if err != nil {
		s.metrics.FileOperation("download", metrics.ResultError)
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			s.logger.Error(ctx, "file record has no blob", "file_id", file.ID, "stored_name", file.StoredName)
			return nil, common.ErrNotFoundOnDisk
		}
		return nil, fmt.Errorf("error opening blob: %w", err)
	}

	s.metrics.FileOperation("download", metrics.ResultOK)
	return &Download{File: file, Body: body}, nil
}

// Delete removes the record, then the blob. Once the record is gone the
// delete has succeeded; a blob failure only shows up in the result.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID string) (*DeleteResult, error) {
	file, err := s.resolve(ctx, "delete", ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Files(s.db).Delete(ctx, file.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.FileOperation("delete", metrics.ResultNotFound)
			return nil, common.ErrorNotFound
		}
		s.metrics.FileOperation("delete", metrics.ResultError)
		return nil, fmt.Errorf("error deleting file record: %w", err)
	}

	result := &DeleteResult{}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), file.StoredName); err != nil {
		result.BlobErr = err
		s.metrics.OrphanBlob(metrics.OrphanDelete)
		s.logger.Warn(ctx, "blob delete failed, orphan left behind",
			"file_id", file.ID, "stored_name", file.StoredName, "error", err)
	}

	s.metrics.FileOperation("delete", metrics.ResultOK)
	s.logger.Info(ctx, "file deleted", "file_id", file.ID, "owner_id", ownerID)

	return result, nil
}

func (s *FileService) resolve(ctx context.Context, op, ownerID, fileID string) (*models.File, error) {
	file, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.FileOperation(op, metrics.ResultNotFound)
			return nil, common.ErrorNotFound
		}
		s.metrics.FileOperation(op, metrics.ResultError)
		return nil, fmt.Errorf("error finding file: %w", err)
	}

	if file.OwnerID != ownerID {
		s.metrics.FileOperation(op, metrics.ResultForbidden)
		s.logger.Info(ctx, "access to foreign file denied", "file_id", fileID, "user_id", ownerID)
		return nil, common.ErrForbidden
	}

	return file, nil
}
