package domain

import "time"

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// IsTerminal reports whether a status permits no further transitions.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	StoragePath string         `json:"storage_path"`
	FileSize    int64          `json:"file_size"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	Metadata    *Metadata      `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Metadata is the structured bundle produced by AI extraction. Field
// taxonomies are open-ended: values outside the curated suggestion lists are
// kept as free text, never rejected.
type Metadata struct {
	AgreementType  string  `json:"agreement_type,omitempty"`
	GoverningLaw   string  `json:"governing_law,omitempty"`
	Jurisdiction   string  `json:"jurisdiction,omitempty"`
	Geography      string  `json:"geography,omitempty"`
	IndustrySector string  `json:"industry_sector,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// FieldMap returns the non-empty structured fields keyed by field name.
// Used to annotate query matches with "what matched".
func (m *Metadata) FieldMap() map[string]string {
	fields := map[string]string{}
	if m == nil {
		return fields
	}
	if m.AgreementType != "" {
		fields["agreement_type"] = m.AgreementType
	}
	if m.GoverningLaw != "" {
		fields["governing_law"] = m.GoverningLaw
	}
	if m.Jurisdiction != "" {
		fields["jurisdiction"] = m.Jurisdiction
	}
	if m.Geography != "" {
		fields["geography"] = m.Geography
	}
	if m.IndustrySector != "" {
		fields["industry_sector"] = m.IndustrySector
	}
	return fields
}

// QueryMatch pairs a matched document with its non-empty structured fields.
type QueryMatch struct {
	DocumentID string            `json:"document_id"`
	Document   string            `json:"document"`
	Fields     map[string]string `json:"fields"`
}

type QueryResult struct {
	Question string       `json:"question"`
	Matches  []QueryMatch `json:"matches"`
	Total    int          `json:"total"`
	// Fallback marks results produced by the full-text scan rather than
	// structured field predicates.
	Fallback bool `json:"fallback,omitempty"`
}

// DashboardStats aggregates metadata of completed documents plus record
// counts per processing status.
type DashboardStats struct {
	AgreementTypes   map[string]int `json:"agreement_types"`
	Jurisdictions    map[string]int `json:"jurisdictions"`
	Industries       map[string]int `json:"industries"`
	TotalDocuments   int            `json:"total_documents"`
	ProcessingStatus map[string]int `json:"processing_status"`
}

type DashboardSummary struct {
	TotalDocuments       int     `json:"total_documents"`
	CompletedDocuments   int     `json:"completed_documents"`
	PendingDocuments     int     `json:"pending_documents"`
	ProcessingDocuments  int     `json:"processing_documents"`
	FailedDocuments      int     `json:"failed_documents"`
	CompletionRate       float64 `json:"completion_rate"`
	UniqueAgreementTypes int     `json:"unique_agreement_types"`
	UniqueJurisdictions  int     `json:"unique_jurisdictions"`
	UniqueIndustries     int     `json:"unique_industries"`
}
