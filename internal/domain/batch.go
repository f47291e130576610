package domain

import "time"

// BatchStatus represents the processing state of a batch invocation.
type BatchStatus string

const (
	BatchStatusProcessing     BatchStatus = "PROCESSING"
	BatchStatusCompleted      BatchStatus = "COMPLETED"
	BatchStatusPartialFailure BatchStatus = "PARTIAL_FAILURE"
)

func (s BatchStatus) String() string { return string(s) }

func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusProcessing, BatchStatusCompleted, BatchStatusPartialFailure:
		return true
	}
	return false
}

// DispatchBatch is the durable audit row for one dispatch invocation.
type DispatchBatch struct {
	ID          string
	TotalCount  int
	SentCount   int
	FailedCount int
	Status      BatchStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
