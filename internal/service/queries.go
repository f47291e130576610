package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rashup198/merchant-mailer/internal/domain"
	"github.com/rashup198/merchant-mailer/internal/repository"
)

// BatchSummary aggregates one batch's header row with its per-status
// outcome counts.
type BatchSummary struct {
	BatchID     string
	TotalCount  int
	SentCount   int
	FailedCount int
	Status      domain.BatchStatus
	Counts      []StatusCount
}

type StatusCount struct {
	Status domain.DispatchStatus
	Count  int
}

func (p *DispatchPipeline) GetOutcome(ctx context.Context, id string) (*domain.OutcomeRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: outcome id is required", domain.ErrValidation)
	}
	return p.outcomes.GetByID(ctx, strings.TrimSpace(id))
}

func (p *DispatchPipeline) ListOutcomes(
	ctx context.Context,
	params repository.ListParams,
) ([]domain.OutcomeRecord, int64, error) {
	return p.outcomes.List(ctx, params)
}

func (p *DispatchPipeline) GetBatchSummary(ctx context.Context, batchID string) (*BatchSummary, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, fmt.Errorf("%w: batch id is required", domain.ErrValidation)
	}

	batch, err := p.batches.GetByID(ctx, strings.TrimSpace(batchID))
	if err != nil {
		return nil, err
	}

	statuses, err := p.outcomes.GetBatchSummary(ctx, batch.ID)
	if err != nil {
		return nil, err
	}

	counts := make([]StatusCount, 0, len(statuses))
	for _, summary := range statuses {
		counts = append(counts, StatusCount{
			Status: summary.Status,
			Count:  summary.Count,
		})
	}

	return &BatchSummary{
		BatchID:     batch.ID,
		TotalCount:  batch.TotalCount,
		SentCount:   batch.SentCount,
		FailedCount: batch.FailedCount,
		Status:      batch.Status,
		Counts:      counts,
	}, nil
}
