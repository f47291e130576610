package repository

import (
	"time"

	"github.com/rashup198/merchant-mailer/internal/domain"
)

// OutcomeModel is the persistence model for the dispatch_outcomes table.
type OutcomeModel struct {
	ID                  string                `gorm:"type:uuid;primaryKey"`
	BatchID             string                `gorm:"type:uuid;not null"`
	BrandName           string                `gorm:"type:varchar(255);not null"`
	Email               string                `gorm:"type:varchar(255);not null"`
	Revenue             float64               `gorm:"not null"`
	AverageOrderValue   float64               `gorm:"not null"`
	ContributionPercent float64               `gorm:"not null"`
	Status              domain.DispatchStatus `gorm:"type:varchar(20);not null"`
	DeliveryID          *string               `gorm:"type:varchar(255)"`
	ErrorDetail         *string               `gorm:"type:text"`
	Timestamp           time.Time             `gorm:"type:timestamptz;not null"`
	CreatedAt           time.Time
}

func (OutcomeModel) TableName() string {
	return "dispatch_outcomes"
}

// BatchModel is the persistence model for dispatch_batches.
type BatchModel struct {
	ID          string             `gorm:"type:uuid;primaryKey"`
	TotalCount  int                `gorm:"not null"`
	SentCount   int                `gorm:"not null;default:0"`
	FailedCount int                `gorm:"not null;default:0"`
	Status      domain.BatchStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (BatchModel) TableName() string {
	return "dispatch_batches"
}

func outcomeModelFromDomain(o *domain.OutcomeRecord) *OutcomeModel {
	if o == nil {
		return nil
	}

	return &OutcomeModel{
		ID:                  o.ID,
		BatchID:             o.BatchID,
		BrandName:           o.BrandName,
		Email:               o.Email,
		Revenue:             o.Revenue,
		AverageOrderValue:   o.AverageOrderValue,
		ContributionPercent: o.ContributionPercent,
		Status:              o.Status,
		DeliveryID:          o.DeliveryID,
		ErrorDetail:         o.ErrorDetail,
		Timestamp:           o.Timestamp,
		CreatedAt:           o.CreatedAt,
	}
}

func outcomeModelToDomain(m *OutcomeModel) *domain.OutcomeRecord {
	if m == nil {
		return nil
	}

	return &domain.OutcomeRecord{
		ID:                  m.ID,
		BatchID:             m.BatchID,
		BrandName:           m.BrandName,
		Email:               m.Email,
		Revenue:             m.Revenue,
		AverageOrderValue:   m.AverageOrderValue,
		ContributionPercent: m.ContributionPercent,
		Status:              m.Status,
		DeliveryID:          m.DeliveryID,
		ErrorDetail:         m.ErrorDetail,
		Timestamp:           m.Timestamp,
		CreatedAt:           m.CreatedAt,
	}
}

func batchModelFromDomain(b *domain.DispatchBatch) *BatchModel {
	if b == nil {
		return nil
	}

	return &BatchModel{
		ID:          b.ID,
		TotalCount:  b.TotalCount,
		SentCount:   b.SentCount,
		FailedCount: b.FailedCount,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func batchModelToDomain(m *BatchModel) *domain.DispatchBatch {
	if m == nil {
		return nil
	}

	return &domain.DispatchBatch{
		ID:          m.ID,
		TotalCount:  m.TotalCount,
		SentCount:   m.SentCount,
		FailedCount: m.FailedCount,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
