package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rashup198/merchant-mailer/internal/domain"
	"gorm.io/gorm"
)

type ListParams struct {
	Status   *domain.DispatchStatus
	BatchID  *string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type BatchSummary struct {
	Status domain.DispatchStatus `gorm:"column:status"`
	Count  int                   `gorm:"column:count"`
}

// OutcomeRepository is the durable outcome store. Append-only from the
// pipeline's point of view; reads exist for the audit surface.
type OutcomeRepository interface {
	Append(ctx context.Context, o *domain.OutcomeRecord) error
	GetByID(ctx context.Context, id string) (*domain.OutcomeRecord, error)
	List(ctx context.Context, params ListParams) ([]domain.OutcomeRecord, int64, error)
	GetBatchSummary(ctx context.Context, batchID string) ([]BatchSummary, error)
}

type GormOutcomeRepo struct {
	db *gorm.DB
}

func NewGormOutcomeRepo(db *gorm.DB) *GormOutcomeRepo {
	return &GormOutcomeRepo{db: db}
}

func (r *GormOutcomeRepo) Append(ctx context.Context, o *domain.OutcomeRecord) error {
	model := outcomeModelFromDomain(o)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if o != nil {
		*o = *outcomeModelToDomain(model)
	}
	return nil
}

func (r *GormOutcomeRepo) GetByID(ctx context.Context, id string) (*domain.OutcomeRecord, error) {
	var model OutcomeModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return outcomeModelToDomain(&model), nil
}

func (r *GormOutcomeRepo) List(ctx context.Context, params ListParams) ([]domain.OutcomeRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&OutcomeModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.BatchID != nil {
		query = query.Where("batch_id = ?", *params.BatchID)
	}
	if params.From != nil {
		query = query.Where("timestamp >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("timestamp <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []OutcomeModel
	err := query.
		Order("timestamp DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	records := make([]domain.OutcomeRecord, 0, len(models))
	for i := range models {
		records = append(records, *outcomeModelToDomain(&models[i]))
	}

	return records, total, nil
}

func (r *GormOutcomeRepo) GetBatchSummary(ctx context.Context, batchID string) ([]BatchSummary, error) {
	var summaries []BatchSummary
	err := r.db.WithContext(ctx).
		Model(&OutcomeModel{}).
		Select("status, COUNT(*) as count").
		Where("batch_id = ?", batchID).
		Group("status").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
