package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/rashup198/merchant-mailer/internal/domain"
)

// Required column names of the uploaded merchant batch.
const (
	ColumnBrandName    = "Brand Name"
	ColumnEmail        = "Email"
	ColumnRevenue      = "Revenue"
	ColumnAOV          = "AOV"
	ColumnContribution = "% Contribution"
)

// RequiredColumns returns the required column set in declaration order.
func RequiredColumns() []string {
	return []string{ColumnBrandName, ColumnEmail, ColumnRevenue, ColumnAOV, ColumnContribution}
}

// ValidateRows turns raw string-keyed rows into merchant records.
//
// It fails with domain.ErrEmptyBatch for an empty input, with
// *domain.MissingColumnsError when the first row's keys do not cover every
// required column, and with domain.ErrNoValidRows when filtering leaves
// nothing. Rows missing a required value, or whose numeric fields do not
// parse as finite numbers, are silently dropped.
func ValidateRows(rows []map[string]string, required []string) ([]domain.MerchantRecord, error) {
	if len(rows) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(required) == 0 {
		required = RequiredColumns()
	}

	missing := make([]string, 0)
	for _, column := range required {
		if _, ok := rows[0][column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Missing: missing}
	}

	records := make([]domain.MerchantRecord, 0, len(rows))
	for _, row := range rows {
		record, ok := recordFromRow(row)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, domain.ErrNoValidRows
	}
	return records, nil
}

func recordFromRow(row map[string]string) (domain.MerchantRecord, bool) {
	brand := strings.TrimSpace(row[ColumnBrandName])
	email := strings.TrimSpace(row[ColumnEmail])
	if brand == "" || email == "" {
		return domain.MerchantRecord{}, false
	}

	revenue, ok := parseFinite(row[ColumnRevenue])
	if !ok {
		return domain.MerchantRecord{}, false
	}
	aov, ok := parseFinite(row[ColumnAOV])
	if !ok {
		return domain.MerchantRecord{}, false
	}
	contribution, ok := parseFinite(row[ColumnContribution])
	if !ok {
		return domain.MerchantRecord{}, false
	}

	return domain.MerchantRecord{
		BrandName:           brand,
		Email:               email,
		Revenue:             revenue,
		AverageOrderValue:   aov,
		ContributionPercent: contribution,
	}, true
}

func parseFinite(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
