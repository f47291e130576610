package domain

import (
	"fmt"
	"math"
	"strings"
)

// MerchantRecord is one validated row of an uploaded performance batch.
// It is immutable once produced by the validation boundary; downstream
// components never see the raw row mapping.
type MerchantRecord struct {
	BrandName           string
	Email               string
	Revenue             float64
	AverageOrderValue   float64
	ContributionPercent float64
}

func (r *MerchantRecord) Validate() error {
	if strings.TrimSpace(r.BrandName) == "" {
		return fmt.Errorf("%w: brand name is required", ErrValidation)
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	for name, value := range map[string]float64{
		"revenue":      r.Revenue,
		"aov":          r.AverageOrderValue,
		"contribution": r.ContributionPercent,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrValidation, name)
		}
	}
	return nil
}
