package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/legal-intel/internal/core/domain"
)

func completedDoc(id, filename string, meta domain.Metadata) domain.Document {
	return domain.Document{
		ID:       id,
		Filename: filename,
		Status:   domain.StatusCompleted,
		Metadata: &meta,
	}
}

func queryCorpus() *repoFake {
	return &repoFake{docs: []domain.Document{
		completedDoc("doc-1", "nda_acme.pdf", domain.Metadata{
			AgreementType: "NDA", GoverningLaw: "UAE", Jurisdiction: "Dubai",
			Geography: "Middle East", IndustrySector: "Technology", Confidence: 0.9,
		}),
		completedDoc("doc-2", "msa_globex.docx", domain.Metadata{
			AgreementType: "MSA", GoverningLaw: "UK", Jurisdiction: "London",
			Geography: "Europe", IndustrySector: "Oil & Gas", Confidence: 0.8,
		}),
		completedDoc("doc-3", "franchise_gulf.pdf", domain.Metadata{
			AgreementType: "Franchise Agreement", GoverningLaw: "UAE",
			Geography: "Middle East", IndustrySector: "Retail", Confidence: 0.7,
		}),
		{ID: "doc-4", Filename: "still_working.pdf", Status: domain.StatusProcessing},
	}}
}

func TestQueryMatchesGoverningLaw(t *testing.T) {
	uc := NewQueryDocumentsUseCase(queryCorpus())

	result, err := uc.Query(context.Background(), "Which agreements are governed by UAE law?")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", result.Total, result.Matches)
	}
	if result.Matches[0].DocumentID != "doc-1" || result.Matches[1].DocumentID != "doc-3" {
		t.Fatalf("matches must preserve upload order, got %+v", result.Matches)
	}
	if result.Matches[0].Fields["governing_law"] != "UAE" {
		t.Fatalf("expected matched field annotated, got %+v", result.Matches[0].Fields)
	}
}

func TestQueryPredicateFromOneDocumentSelectsOthers(t *testing.T) {
	// "UAE" is stored verbatim on one record only; the vocabulary is
	// corpus-wide, so the longer governing-law value must match too.
	uc := NewQueryDocumentsUseCase(&repoFake{docs: []domain.Document{
		completedDoc("doc-a", "nda_short.pdf", domain.Metadata{
			GoverningLaw: "UAE", Confidence: 0.9,
		}),
		completedDoc("doc-b", "msa_long.pdf", domain.Metadata{
			GoverningLaw: "UAE Federal Law No. 5", Confidence: 0.8,
		}),
	}})

	result, err := uc.Query(context.Background(), "Which agreements are governed by UAE law?")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Fallback {
		t.Fatalf("structured predicates must not set the fallback flag")
	}
	if result.Total != 2 {
		t.Fatalf("expected both documents to match predicate, got %+v", result.Matches)
	}
	if result.Matches[1].Fields["governing_law"] != "UAE Federal Law No. 5" {
		t.Fatalf("expected the containing field annotated, got %+v", result.Matches[1].Fields)
	}
}

func TestQueryIsCaseInsensitive(t *testing.T) {
	uc := NewQueryDocumentsUseCase(queryCorpus())

	result, err := uc.Query(context.Background(), "show me all the nda documents")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Total != 1 || result.Matches[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}
}

func TestQueryCombinesPredicatesWithOR(t *testing.T) {
	uc := NewQueryDocumentsUseCase(queryCorpus())

	result, err := uc.Query(context.Background(), "NDA or MSA agreements please")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected both doc-1 and doc-2, got %+v", result.Matches)
	}
}

func TestQueryIgnoresUnfinishedDocuments(t *testing.T) {
	uc := NewQueryDocumentsUseCase(queryCorpus())

	result, err := uc.Query(context.Background(), "documents about working still")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	for _, m := range result.Matches {
		if m.DocumentID == "doc-4" {
			t.Fatalf("processing documents must never match: %+v", result.Matches)
		}
	}
}

func TestQueryFallsBackToFilenameTokens(t *testing.T) {
	uc := NewQueryDocumentsUseCase(queryCorpus())

	// No structured field mentions "globex"; the filename does.
	result, err := uc.Query(context.Background(), "anything signed with globex?")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Total != 1 || result.Matches[0].DocumentID != "doc-2" {
		t.Fatalf("expected filename fallback to find doc-2, got %+v", result.Matches)
	}
	if !result.Fallback {
		t.Fatalf("fallback flag should be set")
	}
}

func TestQueryFallbackIgnoresShortTokens(t *testing.T) {
	uc := NewQueryDocumentsUseCase(&repoFake{docs: []domain.Document{
		completedDoc("doc-1", "the_big_deal.pdf", domain.Metadata{AgreementType: "Supply Agreement", Confidence: 0.9}),
	}})

	result, err := uc.Query(context.Background(), "is it a go?")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("short tokens must not match, got %+v", result.Matches)
	}
}

func TestQueryZeroMatchesIsNotAnError(t *testing.T) {
	uc := NewQueryDocumentsUseCase(&repoFake{})

	result, err := uc.Query(context.Background(), "contracts governed by Singapore law")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Total != 0 || len(result.Matches) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestQueryValidatesQuestionLength(t *testing.T) {
	uc := NewQueryDocumentsUseCase(&repoFake{})

	for _, q := range []string{"", "ab", "  a  ", strings.Repeat("q", 501)} {
		if _, err := uc.Query(context.Background(), q); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Errorf("Query(%q) expected ErrInvalidInput, got %v", q, err)
		}
	}
}
