package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

type IngestDocumentUseCase struct {
	repo        ports.DocumentRepository
	storage     ports.ObjectStorage
	queue       ports.MessageQueue
	maxFileSize int64
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxFileSize int64,
) *IngestDocumentUseCase {
	if maxFileSize <= 0 {
		maxFileSize = 50 * 1024 * 1024
	}
	return &IngestDocumentUseCase{
		repo:        repo,
		storage:     storage,
		queue:       queue,
		maxFileSize: maxFileSize,
	}
}

// Upload validates one file, persists it, records a pending document and
// dispatches the extraction task. Validation failures reject only this file,
// the caller decides what to do with the rest of a batch.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename string,
	size int64,
	body io.Reader,
) (*domain.Document, error) {
	if err := uc.validate(filename, size); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	// The stream is cut at the declared size. If more bytes follow, the
	// declared size lied and the stored payload would be a truncated
	// document, so the upload is rejected and the partial file removed.
	if err := uc.storage.Save(ctx, storageKey, io.LimitReader(body, size)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	var extra [1]byte
	if n, _ := body.Read(extra[:]); n > 0 {
		_ = uc.storage.Delete(ctx, storageKey)
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("%s: payload exceeds declared size of %d bytes", filename, size))
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		FileSize:    size,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		// The stored record must not stay pending forever when no task
		// will ever arrive for it.
		if failErr := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "dispatch extraction task: "+err.Error()); failErr != nil {
			return nil, fmt.Errorf("publish upload event: %w; mark failed status: %v", err, failErr)
		}
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return doc, nil
}

func (uc *IngestDocumentUseCase) validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return domain.WrapError(domain.ErrInvalidFileType, "validate upload",
			fmt.Errorf("%s: extension %q is not allowed", filename, ext))
	}
	if size <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("%s: empty file", filename))
	}
	if size > uc.maxFileSize {
		return domain.WrapError(domain.ErrFileTooLarge, "validate upload",
			fmt.Errorf("%s: %d bytes exceeds limit of %d", filename, size, uc.maxFileSize))
	}
	return nil
}

// Delete removes the stored payload and the record. The record goes last so
// a crash between the two steps leaves an orphaned file, not a record
// pointing at nothing.
func (uc *IngestDocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
