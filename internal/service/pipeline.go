package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rashup198/merchant-mailer/internal/channel"
	"github.com/rashup198/merchant-mailer/internal/compose"
	"github.com/rashup198/merchant-mailer/internal/domain"
	"github.com/rashup198/merchant-mailer/internal/observability"
	"github.com/rashup198/merchant-mailer/internal/ratelimit"
	"github.com/rashup198/merchant-mailer/internal/repository"
	"go.uber.org/zap"
)

// limiterKey is the throughput bucket shared by all relay sends.
const limiterKey = "email"

// DispatchPipeline drives a validated batch through compose, send, and
// persist, one record at a time. Sequential processing is deliberate
// backpressure against the mail relay: record n+1 does not begin until
// record n has reached a terminal status.
type DispatchPipeline struct {
	outcomes repository.OutcomeRepository
	batches  repository.BatchRepository
	channel  channel.Channel
	composer *compose.Composer
	limiter  ratelimit.RateLimiter
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewDispatchPipeline(
	outcomes repository.OutcomeRepository,
	batches repository.BatchRepository,
	ch channel.Channel,
	composer *compose.Composer,
	limiter ratelimit.RateLimiter,
	logger *zap.Logger,
) (*DispatchPipeline, error) {
	if outcomes == nil {
		return nil, fmt.Errorf("outcome repository is required")
	}
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if ch == nil {
		return nil, fmt.Errorf("notification channel is required")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DispatchPipeline{
		outcomes: outcomes,
		batches:  batches,
		channel:  ch,
		composer: composer,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *DispatchPipeline) SetMetrics(metrics *observability.Metrics) {
	if p == nil {
		return
	}
	p.metrics = metrics
}

// Dispatch runs the full batch and returns the consolidated result. A single
// record's failure never aborts the batch; the only abort path is a failure
// before the per-record loop begins. Calling Dispatch twice re-sends and
// re-appends: there is no deduplication across invocations.
func (p *DispatchPipeline) Dispatch(ctx context.Context, records []domain.MerchantRecord) (*domain.BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	logger := observability.WithContextLogger(p.logger, ctx)

	batch := &domain.DispatchBatch{
		ID:         uuid.NewString(),
		TotalCount: len(records),
		Status:     domain.BatchStatusProcessing,
	}
	if err := p.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to start dispatch batch: %w", err)
	}

	log := newRunningLog(len(records))
	sent, failed := 0, 0

	for i := range records {
		outcome, reason := p.processRecord(ctx, batch.ID, records[i])
		log.upsert(outcome)

		if outcome.Status == domain.StatusSent {
			sent++
			if p.metrics != nil {
				p.metrics.IncDispatchSent()
			}
		} else {
			failed++
			if p.metrics != nil {
				p.metrics.IncDispatchFailed(reason)
			}
		}
	}

	status := domain.BatchStatusCompleted
	if failed > 0 {
		status = domain.BatchStatusPartialFailure
	}
	if err := p.batches.Finalize(ctx, batch.ID, status, sent, failed); err != nil {
		// Per-record outcomes are already durable; the result is still
		// returned even when the batch header update fails.
		logger.Error("failed to finalize dispatch batch",
			zap.String("batchId", batch.ID),
			zap.Error(err),
		)
	}
	if p.metrics != nil {
		p.metrics.IncBatchFinished(status.String())
	}

	logger.Info("dispatch batch completed",
		zap.String("batchId", batch.ID),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)

	return &domain.BatchResult{
		BatchID:     batch.ID,
		Entries:     log.entries,
		SentCount:   sent,
		FailedCount: failed,
	}, nil
}

// processRecord drives one record from PROCESSING to exactly one terminal
// status. Channel and store failures are captured as data, never returned.
// The second return value is the metric label for a failed record, empty
// when the record was sent.
func (p *DispatchPipeline) processRecord(ctx context.Context, batchID string, record domain.MerchantRecord) (domain.DispatchOutcome, string) {
	logger := observability.WithContextLogger(p.logger, ctx)
	outcome := domain.DispatchOutcome{
		BrandName: record.BrandName,
		Email:     record.Email,
		Status:    domain.StatusProcessing,
	}

	var sendErr error
	var receipt *channel.Receipt

	msg, composeErr := p.composer.Compose(record)
	switch {
	case composeErr != nil:
		sendErr = composeErr
	default:
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx, limiterKey); err != nil {
				sendErr = fmt.Errorf("rate limiter wait failed: %w", err)
			}
		}
		if sendErr == nil {
			sendStart := p.now()
			receipt, sendErr = p.channel.Send(ctx, channel.OutboundMessage{
				To:      record.Email,
				Subject: msg.Subject,
				HTML:    msg.Body,
			})
			if p.metrics != nil {
				p.metrics.ObserveSendDuration(p.now().Sub(sendStart))
			}
		}
	}

	pending := domain.StatusSent
	if sendErr != nil {
		pending = domain.StatusFailed
		logger.Warn("email delivery failed",
			zap.String("brand", record.BrandName),
			zap.String("email", record.Email),
			zap.Error(sendErr),
		)
	} else {
		logger.Info("email sent",
			zap.String("brand", record.BrandName),
			zap.String("email", record.Email),
		)
	}

	stored := &domain.OutcomeRecord{
		ID:                  uuid.NewString(),
		BatchID:             batchID,
		BrandName:           record.BrandName,
		Email:               record.Email,
		Revenue:             record.Revenue,
		AverageOrderValue:   record.AverageOrderValue,
		ContributionPercent: record.ContributionPercent,
		Status:              pending,
		Timestamp:           p.now().UTC(),
	}
	if receipt != nil && receipt.DeliveryID != "" {
		id := receipt.DeliveryID
		stored.DeliveryID = &id
	}
	if sendErr != nil {
		detail := sendErr.Error()
		stored.ErrorDetail = &detail
	}

	storeErr := p.outcomes.Append(ctx, stored)
	if storeErr == nil {
		recordID := stored.ID
		outcome.RecordID = &recordID
	} else {
		logger.Error("failed to persist dispatch outcome",
			zap.String("brand", record.BrandName),
			zap.String("email", record.Email),
			zap.Error(storeErr),
		)
	}

	outcome.Status, outcome.ErrorDetail = finalizeOutcome(pending, sendErr, storeErr)
	if outcome.Status == domain.StatusSent {
		outcome.DeliveryID = stored.DeliveryID
	}

	return outcome, failureReason(composeErr, sendErr, storeErr)
}

// finalizeOutcome is the pure terminal transition: pending status plus the
// two external call results in, final status and error detail out.
//
// A record whose notification went out but whose outcome could not be
// recorded is FAILED overall: the durable log is the source of truth for
// billing and audit, so an unrecorded delivery gets no credit.
func finalizeOutcome(pending domain.DispatchStatus, sendErr, storeErr error) (domain.DispatchStatus, *string) {
	switch {
	case sendErr == nil && storeErr == nil:
		return pending, nil
	case sendErr != nil && storeErr != nil:
		detail := fmt.Sprintf("Email failed: %s, DB failed: %s", sendErr.Error(), storeErr.Error())
		return domain.StatusFailed, &detail
	case sendErr != nil:
		detail := sendErr.Error()
		return domain.StatusFailed, &detail
	default:
		detail := storeErr.Error()
		return domain.StatusFailed, &detail
	}
}

// failureReason maps the three failure sources onto the metric label.
// Compose errors travel through sendErr, so composeErr is checked first.
func failureReason(composeErr, sendErr, storeErr error) string {
	switch {
	case composeErr != nil && storeErr != nil:
		return "compose_and_store_error"
	case composeErr != nil:
		return "compose_error"
	case sendErr != nil && storeErr != nil:
		return "channel_and_store_error"
	case sendErr != nil:
		return "channel_error"
	case storeErr != nil:
		return "store_error"
	default:
		return ""
	}
}

// runningLog keeps the ordered per-record entries plus an email-keyed index.
// Duplicate addresses are neither merged nor rejected: each input record gets
// its own entry, and the index points at the latest entry for an address.
type runningLog struct {
	entries []domain.DispatchOutcome
	byEmail map[string]int
}

func newRunningLog(capacity int) *runningLog {
	return &runningLog{
		entries: make([]domain.DispatchOutcome, 0, capacity),
		byEmail: make(map[string]int, capacity),
	}
}

func (l *runningLog) upsert(outcome domain.DispatchOutcome) {
	l.entries = append(l.entries, outcome)
	l.byEmail[outcome.Email] = len(l.entries) - 1
}

func (l *runningLog) latest(email string) (domain.DispatchOutcome, bool) {
	idx, ok := l.byEmail[email]
	if !ok {
		return domain.DispatchOutcome{}, false
	}
	return l.entries[idx], true
}
