package models

import "time"

const (
	RunRunning  = "running"
	RunFinished = "finished"
	RunFailed   = "failed"
)

// Run is the tracking record of one job execution: its parameters and the
// artifacts it consumed and produced.
type Run struct {
	ID         string         `json:"id"`
	JobType    string         `json:"job_type"`
	Config     map[string]any `json:"config"`
	Used       []string       `json:"used"`
	Logged     []string       `json:"logged"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// CleaningReport holds the counters and price statistics of a cleaning pass.
type CleaningReport struct {
	RunID string

	RowsIn             int
	RowsOut            int
	DroppedMissing     int
	DroppedOutOfBounds int
	DroppedGeo         int
	InvalidLastReview  int

	PriceCount  int
	PriceMean   float64
	PriceMin    float64
	PriceMax    float64
	PriceMedian float64

	Output *Artifact
}
