package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rashup198/merchant-mailer/internal/domain"
	"github.com/rashup198/merchant-mailer/internal/ingest"
	"github.com/rashup198/merchant-mailer/internal/observability"
	"github.com/rashup198/merchant-mailer/internal/repository"
	"github.com/rashup198/merchant-mailer/internal/service"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100

	csvFormField = "file"
)

type DispatchService interface {
	Dispatch(ctx context.Context, records []domain.MerchantRecord) (*domain.BatchResult, error)
	GetOutcome(ctx context.Context, id string) (*domain.OutcomeRecord, error)
	ListOutcomes(ctx context.Context, params repository.ListParams) ([]domain.OutcomeRecord, int64, error)
	GetBatchSummary(ctx context.Context, batchID string) (*service.BatchSummary, error)
}

type DispatchHandler struct {
	service DispatchService
}

func NewDispatchHandler(service DispatchService) (*DispatchHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("dispatch service is required")
	}
	return &DispatchHandler{service: service}, nil
}

func RegisterDispatchRoutes(router fiber.Router, service DispatchService) error {
	h, err := NewDispatchHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/dispatch", h.Dispatch)
	v1.Post("/dispatch/upload", h.DispatchUpload)
	v1.Get("/outcomes", h.ListOutcomes)
	v1.Get("/outcomes/:id", h.GetOutcome)
	v1.Get("/batches/:batchId", h.GetBatchSummary)

	return nil
}

type dispatchRequest struct {
	Rows []map[string]string `json:"rows"`
}

type dispatchEntry struct {
	BrandName   string  `json:"brandName"`
	Email       string  `json:"email"`
	Status      string  `json:"status"`
	DeliveryID  *string `json:"deliveryId,omitempty"`
	RecordID    *string `json:"recordId,omitempty"`
	ErrorDetail *string `json:"error,omitempty"`
}

type dispatchStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type dispatchResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	BatchID string          `json:"batchId"`
	Entries []dispatchEntry `json:"entries"`
	Stats   dispatchStats   `json:"stats"`
}

type outcomeResponse struct {
	ID                  string    `json:"id"`
	BatchID             string    `json:"batchId"`
	BrandName           string    `json:"brandName"`
	Email               string    `json:"email"`
	Revenue             float64   `json:"revenue"`
	AverageOrderValue   float64   `json:"averageOrderValue"`
	ContributionPercent float64   `json:"contributionPercent"`
	Status              string    `json:"status"`
	DeliveryID          *string   `json:"deliveryId,omitempty"`
	ErrorDetail         *string   `json:"error,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

type listOutcomesResponse struct {
	Data []outcomeResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type batchSummaryResponse struct {
	BatchID     string                 `json:"batchId"`
	TotalCount  int                    `json:"totalCount"`
	SentCount   int                    `json:"sentCount"`
	FailedCount int                    `json:"failedCount"`
	Status      string                 `json:"status"`
	Counts      []batchStatusCountItem `json:"counts"`
}

type batchStatusCountItem struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func (h *DispatchHandler) Dispatch(c *fiber.Ctx) error {
	var req dispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	records, err := ingest.ValidateRows(req.Rows, ingest.RequiredColumns())
	if err != nil {
		return toHTTPError(err)
	}

	return h.dispatch(c, records)
}

func (h *DispatchHandler) DispatchUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(csvFormField)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "csv file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	rows, err := ingest.ReadCSV(file)
	if err != nil {
		return toHTTPError(err)
	}

	records, err := ingest.ValidateRows(rows, ingest.RequiredColumns())
	if err != nil {
		return toHTTPError(err)
	}

	return h.dispatch(c, records)
}

func (h *DispatchHandler) dispatch(c *fiber.Ctx, records []domain.MerchantRecord) error {
	ctx := observability.WithRequestID(c.Context(), requestID(c))

	result, err := h.service.Dispatch(ctx, records)
	if err != nil {
		return toHTTPError(err)
	}

	entries := make([]dispatchEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, dispatchEntry{
			BrandName:   entry.BrandName,
			Email:       entry.Email,
			Status:      entry.Status.String(),
			DeliveryID:  entry.DeliveryID,
			RecordID:    entry.RecordID,
			ErrorDetail: entry.ErrorDetail,
		})
	}

	return c.Status(fiber.StatusOK).JSON(dispatchResponse{
		Success: true,
		Message: fmt.Sprintf("Emails sent: %d succeeded, %d failed", result.SentCount, result.FailedCount),
		BatchID: result.BatchID,
		Entries: entries,
		Stats: dispatchStats{
			Sent:   result.SentCount,
			Failed: result.FailedCount,
		},
	})
}

func (h *DispatchHandler) GetOutcome(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	outcome, err := h.service.GetOutcome(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toOutcomeResponse(outcome))
}

func (h *DispatchHandler) ListOutcomes(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	outcomes, total, err := h.service.ListOutcomes(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]outcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		o := outcome
		data = append(data, toOutcomeResponse(&o))
	}

	return c.Status(fiber.StatusOK).JSON(listOutcomesResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *DispatchHandler) GetBatchSummary(c *fiber.Ctx) error {
	batchID := strings.TrimSpace(c.Params("batchId"))
	summary, err := h.service.GetBatchSummary(c.Context(), batchID)
	if err != nil {
		return toHTTPError(err)
	}

	items := make([]batchStatusCountItem, 0, len(summary.Counts))
	for _, count := range summary.Counts {
		items = append(items, batchStatusCountItem{
			Status: count.Status.String(),
			Count:  count.Count,
		})
	}

	return c.Status(fiber.StatusOK).JSON(batchSummaryResponse{
		BatchID:     summary.BatchID,
		TotalCount:  summary.TotalCount,
		SentCount:   summary.SentCount,
		FailedCount: summary.FailedCount,
		Status:      summary.Status.String(),
		Counts:      items,
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseDispatchStatusFromString(rawStatus)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Status = &status
	}

	if rawBatchID := strings.TrimSpace(c.Query("batchId")); rawBatchID != "" {
		params.BatchID = &rawBatchID
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.ListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.ListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

func requestID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func toOutcomeResponse(o *domain.OutcomeRecord) outcomeResponse {
	if o == nil {
		return outcomeResponse{}
	}

	return outcomeResponse{
		ID:                  o.ID,
		BatchID:             o.BatchID,
		BrandName:           o.BrandName,
		Email:               o.Email,
		Revenue:             o.Revenue,
		AverageOrderValue:   o.AverageOrderValue,
		ContributionPercent: o.ContributionPercent,
		Status:              o.Status.String(),
		DeliveryID:          o.DeliveryID,
		ErrorDetail:         o.ErrorDetail,
		Timestamp:           o.Timestamp,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
