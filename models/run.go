package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SearchRun is the operational record of one search execution.
type SearchRun struct {
	ID                int64      `json:"id" db:"id"`
	SearchID          string     `json:"search_id" db:"search_id"` // uuid per request
	StartedAt         time.Time  `json:"started_at" db:"started_at"`
	FinishedAt        *time.Time `json:"finished_at" db:"finished_at"`
	Status            RunStatus  `json:"status" db:"status"`
	RecordsScraped    int        `json:"records_scraped" db:"records_scraped"`
	DuplicatesDropped int        `json:"duplicates_dropped" db:"duplicates_dropped"`
	InvalidDropped    int        `json:"invalid_dropped" db:"invalid_dropped"`
	Results           int        `json:"results" db:"results"`
	ErrorsCount       int        `json:"errors_count" db:"errors_count"`
}

// SourceRun records one source's contribution to a search run.
type SourceRun struct {
	ID         int64  `json:"id" db:"id"`
	RunID      int64  `json:"run_id" db:"run_id"`
	SourceID   string `json:"source_id" db:"source_id"`
	Records    int    `json:"records" db:"records"`
	Pages      int    `json:"pages" db:"pages"`
	DurationMS int64  `json:"duration_ms" db:"duration_ms"`
	TimedOut   bool   `json:"timed_out" db:"timed_out"`
	Escalated  bool   `json:"escalated" db:"escalated"` // browser fallback used
	Error      string `json:"error" db:"error"`
}

// SourceStats is the rolling per-source health view.
type SourceStats struct {
	SourceID      string     `json:"source_id" db:"source_id"`
	LastRunAt     *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus string     `json:"last_run_status" db:"last_run_status"`
	TotalRecords  int        `json:"total_records" db:"total_records"`
	SuccessRate   float64    `json:"success_rate" db:"success_rate"`
	Available     bool       `json:"available" db:"available"`
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type ScrapeLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	SourceID  string    `json:"source_id" db:"source_id"`
}
