package domain

import "time"

// JobStatus is the terminal outcome of one stage run.
type JobStatus string

// Job status constants.
const (
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Metadata keys always present on a successful JobResult.
const (
	MetaRowsProcessed = "rows_processed"
	MetaTablesCreated = "tables_created"
)

// JobResult is the outcome of one full stage run. It is created by the stage
// framework, never by a concrete processor, and is immutable once returned.
type JobResult struct {
	JobID           string
	RunID           string
	Status          JobStatus
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds float64
	Message         string
	Error           string
	Metadata        map[string]any
}

// IsSuccess reports whether the run finished with SUCCESS status.
func (r JobResult) IsSuccess() bool { return r.Status == JobStatusSuccess }

// ProcessingResult is the outcome of one load phase. It is produced exactly
// once per stage invocation by Load and enriched in place by PostProcess.
type ProcessingResult struct {
	Success       bool
	Message       string
	Metadata      map[string]any
	RowsProcessed int
	TablesCreated []string
}

// NewProcessingResult returns a result with a non-nil metadata map.
func NewProcessingResult(success bool, message string) *ProcessingResult {
	return &ProcessingResult{
		Success:  success,
		Message:  message,
		Metadata: map[string]any{},
	}
}
