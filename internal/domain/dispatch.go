package domain

import (
	"fmt"
	"strings"
	"time"
)

// DispatchStatus represents the lifecycle state of one record's dispatch.
type DispatchStatus string

const (
	StatusProcessing DispatchStatus = "PROCESSING"
	StatusSent       DispatchStatus = "SENT"
	StatusFailed     DispatchStatus = "FAILED"
)

func (s DispatchStatus) String() string { return string(s) }

func (s DispatchStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusSent, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition occurs for this status.
func (s DispatchStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

func ParseDispatchStatusFromString(s string) (DispatchStatus, error) {
	st := DispatchStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// DispatchOutcome is the in-memory log entry for one record's dispatch.
// Exactly one exists per input record; its status moves from PROCESSING to
// exactly one terminal state before the next record begins.
type DispatchOutcome struct {
	BrandName   string
	Email       string
	Status      DispatchStatus
	DeliveryID  *string
	RecordID    *string
	ErrorDetail *string
}

// OutcomeRecord is the durable audit row appended to the outcome store for
// every dispatch attempt, successful or not. Append-only.
type OutcomeRecord struct {
	ID                  string
	BatchID             string
	BrandName           string
	Email               string
	Revenue             float64
	AverageOrderValue   float64
	ContributionPercent float64
	Status              DispatchStatus
	DeliveryID          *string
	ErrorDetail         *string
	Timestamp           time.Time
	CreatedAt           time.Time
}

// BatchResult is the consolidated output of one pipeline invocation.
type BatchResult struct {
	BatchID     string
	Entries     []DispatchOutcome
	SentCount   int
	FailedCount int
}
