package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/observability/metrics"
	"github.com/kirillkom/legal-intel/internal/taxonomy"
)

type ingestFake struct{}

func (f ingestFake) Upload(_ context.Context, filename string, size int64, body io.Reader) (*domain.Document, error) {
	if !strings.HasSuffix(filename, ".pdf") && !strings.HasSuffix(filename, ".docx") {
		return nil, domain.WrapError(domain.ErrInvalidFileType, "validate upload", errors.New(filename))
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:        "doc-" + filename,
		Filename:  filename,
		FileSize:  size,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (f ingestFake) Delete(_ context.Context, id string) error {
	if id == "ghost" {
		return domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	return nil
}

type queryFake struct {
	result *domain.QueryResult
	err    error
}

func (f queryFake) Query(_ context.Context, question string) (*domain.QueryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.QueryResult{Question: question, Matches: []domain.QueryMatch{}}, nil
}

type dashboardFake struct{}

func (f dashboardFake) Stats(context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{
		AgreementTypes:   map[string]int{"NDA": 2},
		Jurisdictions:    map[string]int{},
		Industries:       map[string]int{},
		TotalDocuments:   2,
		ProcessingStatus: map[string]int{"completed": 2},
	}, nil
}

func (f dashboardFake) Summary(context.Context) (*domain.DashboardSummary, error) {
	return &domain.DashboardSummary{TotalDocuments: 2, CompletedDocuments: 2, CompletionRate: 1}, nil
}

type exporterFake struct{}

func (f exporterFake) ExportXLSX(context.Context) ([]byte, error) {
	return []byte("PK\x03\x04fake-workbook"), nil
}

type docsRepoFake struct{}

func (f docsRepoFake) Create(context.Context, *domain.Document) error { return nil }
func (f docsRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if id == "known" {
		return &domain.Document{ID: "known", Filename: "nda.pdf", Status: domain.StatusCompleted}, nil
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
}
func (f docsRepoFake) List(context.Context, int, int) ([]domain.Document, error) {
	return []domain.Document{{ID: "known", Filename: "nda.pdf", Status: domain.StatusCompleted}}, nil
}
func (f docsRepoFake) ListByStatus(context.Context, domain.DocumentStatus) ([]domain.Document, error) {
	return nil, nil
}
func (f docsRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}
func (f docsRepoFake) CompleteWithMetadata(context.Context, string, domain.Metadata) error { return nil }
func (f docsRepoFake) Delete(context.Context, string) error                        { return nil }
func (f docsRepoFake) CountByStatus(context.Context) (map[string]int, error)       { return nil, nil }

func newTestHandler(t *testing.T, rateLimit RateLimitConfig) http.Handler {
	t.Helper()
	suggestions, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("load taxonomy: %v", err)
	}
	return NewRouter(
		ingestFake{},
		queryFake{},
		dashboardFake{},
		exporterFake{},
		docsRepoFake{},
		suggestions,
		metrics.NewHTTPServerMetrics("api"),
		rateLimit,
	).Handler()
}

func multipartBody(t *testing.T, field string, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range filenames {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 content")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header on every response")
	}
}

func TestUploadBatchIsolatesRejectedFiles(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	body, contentType := multipartBody(t, "files", "nda.pdf", "notes.txt", "msa.docx")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	var resp uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 || len(resp.Uploaded) != 2 || len(resp.Rejected) != 1 {
		t.Fatalf("unexpected batch result: %+v", resp)
	}
	if resp.Rejected[0].Filename != "notes.txt" {
		t.Fatalf("unexpected rejection: %+v", resp.Rejected)
	}
}

func TestUploadAllRejectedMapsFirstError(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	body, contentType := multipartBody(t, "files", "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid file type, got %d", res.Code)
	}
}

func TestUploadAcceptsLegacySingleFileField(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	body, contentType := multipartBody(t, "file", "nda.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
}

func TestUploadMissingMultipartField(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryEndpointReturnsMatches(t *testing.T) {
	suggestions, _ := taxonomy.Load()
	handler := NewRouter(
		ingestFake{},
		queryFake{result: &domain.QueryResult{
			Question: "UAE contracts",
			Matches: []domain.QueryMatch{
				{DocumentID: "doc-1", Document: "nda.pdf", Fields: map[string]string{"governing_law": "UAE"}},
			},
			Total: 1,
		}},
		dashboardFake{},
		exporterFake{},
		docsRepoFake{},
		suggestions,
		nil,
		RateLimitConfig{},
	).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"UAE contracts"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var result domain.QueryResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Total != 1 || result.Matches[0].Fields["governing_law"] != "UAE" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestQueryEndpointValidationError(t *testing.T) {
	suggestions, _ := taxonomy.Load()
	handler := NewRouter(
		ingestFake{},
		queryFake{err: domain.WrapError(domain.ErrInvalidInput, "validate question", errors.New("too short"))},
		dashboardFake{},
		exporterFake{},
		docsRepoFake{},
		suggestions,
		nil,
		RateLimitConfig{},
	).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"ab"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentByID(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/known", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/documents/ghost", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/known", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/documents/ghost", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", res.Code)
	}
}

func TestExportRegisterSetsDownloadHeaders(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/export/register.xlsx", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Header().Get("Content-Disposition"), "register.xlsx") {
		t.Fatalf("missing attachment header: %q", res.Header().Get("Content-Disposition"))
	}
}

func TestTaxonomyEndpoint(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/taxonomy", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var s taxonomy.Suggestions
	if err := json.NewDecoder(res.Body).Decode(&s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(s.AgreementTypes) == 0 {
		t.Fatalf("expected agreement type suggestions")
	}
}

func TestRateLimitReturns429WithRetryAfter(t *testing.T) {
	handler := newTestHandler(t, RateLimitConfig{RPS: 1, Burst: 1})

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}
