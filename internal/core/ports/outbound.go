package ports

import (
	"context"
	"io"

	"github.com/kirillkom/legal-intel/internal/core/domain"
)

// DocumentRepository persists and reads document state. The ingestion
// pipeline is the sole writer of status/metadata transitions; the query
// matcher and dashboard only read.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, limit, offset int) ([]domain.Document, error)
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	// CompleteWithMetadata writes the metadata bundle and the completed
	// status as one transition, so no reader ever sees metadata on a
	// non-terminal row.
	CompleteWithMetadata(ctx context.Context, id string, meta domain.Metadata) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes per-document extraction tasks.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor converts a stored binary document into plain text. Failures
// are typed: domain.ErrUnsupportedFormat, ErrCorruptDocument,
// ErrEmptyDocument.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// MetadataExtractor derives the structured metadata bundle from document
// text. Failures are typed: domain.ErrServiceUnavailable,
// ErrMalformedResponse, ErrRateLimited.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, text, filename string) (domain.Metadata, error)
}
