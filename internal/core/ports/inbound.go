package ports

import (
	"context"
	"io"

	"github.com/kirillkom/legal-intel/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration
// and removal.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentProcessor is the inbound contract for asynchronous extraction of a
// single uploaded document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentQueryService answers natural-language questions over completed
// document metadata.
type DocumentQueryService interface {
	Query(ctx context.Context, question string) (*domain.QueryResult, error)
}

// DashboardService aggregates record status and metadata counts.
type DashboardService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
}

// RegisterExporter renders the document register as a spreadsheet.
type RegisterExporter interface {
	ExportXLSX(ctx context.Context) ([]byte, error)
}
