package report

import (
	"go.uber.org/atomic"
)

type BulkState struct {
	Batches           atomic.Uint64 `json:"batches"`
	RejectedBatches   atomic.Uint64 `json:"rejected_batches"`
	EntriesQueued     atomic.Int64  `json:"entries_queued"`
	EntriesProcessing atomic.Int64  `json:"entries_processing"`
	EntriesProcessed  atomic.Uint64 `json:"entries_processed"`
	EntriesSucceeded  atomic.Uint64 `json:"entries_succeeded"`
	EntriesFailed     atomic.Uint64 `json:"entries_failed"`
	EntriesRetried    atomic.Uint64 `json:"entries_retried"`

	// Reset by every successful entry
	ConsecutiveFailures atomic.Int64 `json:"consecutive_failures"`
}

type BulkReport struct {
	State BulkState `json:"state"`
}
