package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
)

type DashboardUseCase struct {
	repo ports.DocumentRepository
}

func NewDashboardUseCase(repo ports.DocumentRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// Stats aggregates the metadata of completed documents plus record counts per
// processing status. Empty field values are skipped, an agreement without a
// stated jurisdiction should not produce an "" bucket.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	completed, err := uc.repo.ListByStatus(ctx, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("list completed documents: %w", err)
	}
	statusCounts, err := uc.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents by status: %w", err)
	}

	stats := &domain.DashboardStats{
		AgreementTypes:   map[string]int{},
		Jurisdictions:    map[string]int{},
		Industries:       map[string]int{},
		ProcessingStatus: statusCounts,
	}
	for _, count := range statusCounts {
		stats.TotalDocuments += count
	}

	for i := range completed {
		meta := completed[i].Metadata
		if meta == nil {
			continue
		}
		countNonEmpty(stats.AgreementTypes, meta.AgreementType)
		// Governing law is the primary jurisdiction signal; fall back to
		// the stated jurisdiction when the contract names no law.
		jurisdiction := meta.GoverningLaw
		if jurisdiction == "" {
			jurisdiction = meta.Jurisdiction
		}
		countNonEmpty(stats.Jurisdictions, jurisdiction)
		countNonEmpty(stats.Industries, meta.IndustrySector)
	}
	return stats, nil
}

func (uc *DashboardUseCase) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	stats, err := uc.Stats(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		TotalDocuments:       stats.TotalDocuments,
		CompletedDocuments:   stats.ProcessingStatus[string(domain.StatusCompleted)],
		PendingDocuments:     stats.ProcessingStatus[string(domain.StatusPending)],
		ProcessingDocuments:  stats.ProcessingStatus[string(domain.StatusProcessing)],
		FailedDocuments:      stats.ProcessingStatus[string(domain.StatusFailed)],
		UniqueAgreementTypes: len(stats.AgreementTypes),
		UniqueJurisdictions:  len(stats.Jurisdictions),
		UniqueIndustries:     len(stats.Industries),
	}
	if summary.TotalDocuments > 0 {
		summary.CompletionRate = float64(summary.CompletedDocuments) / float64(summary.TotalDocuments)
	}
	return summary, nil
}

func countNonEmpty(bucket map[string]int, value string) {
	if value != "" {
		bucket[value]++
	}
}
