// Package httpadapter exposes the REST surface: batch upload, document
// lookup, metadata queries, dashboard aggregates and the register export.
package httpadapter

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
	"github.com/kirillkom/legal-intel/internal/observability/metrics"
	"github.com/kirillkom/legal-intel/internal/taxonomy"
)

const serviceName = "api"

// multipart bodies stay on disk past this threshold instead of RAM.
const maxMultipartMemory = 16 << 20

type Router struct {
	ingest      ports.DocumentIngestor
	query       ports.DocumentQueryService
	dashboard   ports.DashboardService
	exporter    ports.RegisterExporter
	repo        ports.DocumentRepository
	suggestions *taxonomy.Suggestions
	metrics     *metrics.HTTPServerMetrics
	rateLimit   RateLimitConfig
}

func NewRouter(
	ingest ports.DocumentIngestor,
	query ports.DocumentQueryService,
	dashboard ports.DashboardService,
	exporter ports.RegisterExporter,
	repo ports.DocumentRepository,
	suggestions *taxonomy.Suggestions,
	httpMetrics *metrics.HTTPServerMetrics,
	rateLimit RateLimitConfig,
) *Router {
	return &Router{
		ingest:      ingest,
		query:       query,
		dashboard:   dashboard,
		exporter:    exporter,
		repo:        repo,
		suggestions: suggestions,
		metrics:     httpMetrics,
		rateLimit:   rateLimit,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/query", rt.queryDocuments)
	mux.HandleFunc("/v1/dashboard", rt.dashboardStats)
	mux.HandleFunc("/v1/dashboard/stats", rt.dashboardStats)
	mux.HandleFunc("/v1/dashboard/summary", rt.dashboardSummary)
	mux.HandleFunc("/v1/export/register.xlsx", rt.exportRegister)
	mux.HandleFunc("/v1/taxonomy", rt.taxonomySuggestions)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(rt.rateLimit, handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocuments(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

type uploadRejection struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type uploadResponse struct {
	Uploaded []*domain.Document `json:"uploaded"`
	Rejected []uploadRejection  `json:"rejected"`
	Total    int                `json:"total"`
}

// uploadDocuments accepts a multipart batch under the "files" field. Each
// file is validated and stored independently: one bad file never sinks the
// rest of the batch.
func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		// Single-file clients use "file".
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	resp := uploadResponse{
		Uploaded: []*domain.Document{},
		Rejected: []uploadRejection{},
		Total:    len(files),
	}

	var firstErr error
	for _, header := range files {
		doc, err := rt.uploadOne(r, header)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			resp.Rejected = append(resp.Rejected, uploadRejection{
				Filename: header.Filename,
				Error:    err.Error(),
			})
			if rt.metrics != nil {
				rt.metrics.RecordUpload(serviceName, false)
			}
			continue
		}
		resp.Uploaded = append(resp.Uploaded, doc)
		if rt.metrics != nil {
			rt.metrics.RecordUpload(serviceName, true)
		}
	}

	status := http.StatusAccepted
	if len(resp.Uploaded) == 0 {
		status = mapErrorToHTTPStatus(firstErr)
	}
	writeJSON(w, status, resp)
}

func (rt *Router) uploadOne(r *http.Request, header *multipart.FileHeader) (*domain.Document, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open multipart file: %w", err)
	}
	defer file.Close()

	return rt.ingest.Upload(r.Context(), header.Filename, header.Size, file)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	docs, err := rt.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"limit":     limit,
		"offset":    offset,
	})
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.repo.GetByID(r.Context(), id)
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := rt.ingest.Delete(r.Context(), id); err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) queryDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.query.Query(r.Context(), req.Question)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordQuery(serviceName, result.Total, result.Fallback, time.Since(start))
	}
	if result.Matches == nil {
		result.Matches = []domain.QueryMatch{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) dashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	stats, err := rt.dashboard.Stats(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	summary, err := rt.dashboard.Summary(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) exportRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	payload, err := rt.exporter.ExportXLSX(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="register.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (rt *Router) taxonomySuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.suggestions)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
