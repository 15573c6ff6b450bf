package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	metadata  ports.MetadataExtractor
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	metadata ports.MetadataExtractor,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		metadata:  metadata,
	}
}

// ProcessByID runs the extraction pipeline for one uploaded document:
// pending -> processing -> completed, or -> failed with the reason recorded.
// A redelivered task for a document already in a terminal state is a no-op.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		if domain.IsKind(err, domain.ErrTerminalStatus) {
			return nil
		}
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, meta, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	// Metadata and the completed status land in one repository transition:
	// a reader must never observe the bundle on a non-terminal row.
	if err := uc.complete(ctx, doc.ID, meta); err != nil {
		if domain.IsKind(err, domain.ErrTerminalStatus) {
			return nil
		}
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.Document, domain.Metadata, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, domain.Metadata{}, err
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, domain.Metadata{}, err
	}

	meta, err := uc.extractMetadata(ctx, text, doc.Filename)
	if err != nil {
		return nil, domain.Metadata{}, err
	}

	doc.Metadata = &meta
	return doc, meta, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) extractMetadata(ctx context.Context, text, filename string) (domain.Metadata, error) {
	meta, err := uc.metadata.ExtractMetadata(ctx, text, filename)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("extract metadata: %w", err)
	}
	return meta, nil
}

func (uc *ProcessDocumentUseCase) complete(ctx context.Context, documentID string, meta domain.Metadata) error {
	if err := uc.repo.CompleteWithMetadata(ctx, documentID, meta); err != nil {
		return fmt.Errorf("complete document: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

// markFailed records the failure reason. A terminal row is left untouched so
// a stale task cannot overwrite a verdict written by another worker.
func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	err := uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
	if domain.IsKind(err, domain.ErrTerminalStatus) {
		return nil
	}
	return err
}
