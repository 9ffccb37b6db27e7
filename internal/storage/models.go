package storage

import "time"

// RunStatus is the lifecycle state of an analysis run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is one analysis request as recorded in the run log. Conversation
// content is never stored.
type Run struct {
	ID                string     `json:"id"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	Status            RunStatus  `json:"status"`
	MessageCount      int        `json:"message_count"`
	LLMType           string     `json:"llm_type,omitempty"`
	EmbeddingProvider string     `json:"embedding_provider,omitempty"`
	ModelName         string     `json:"model_name,omitempty"`
	TurnCount         int        `json:"turn_count"`
	AverageDeviation  *float64   `json:"average_deviation,omitempty"`
	MaxDeviation      *float64   `json:"max_deviation,omitempty"`
	DeviationTrend    string     `json:"deviation_trend,omitempty"`
	Insights          string     `json:"insights"` // JSON object
	InsightsDegraded  bool       `json:"insights_degraded"`
	MissingSections   []string   `json:"missing_sections,omitempty"`
	Report            string     `json:"report,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// RunOutcome is what Finish records on a run.
type RunOutcome struct {
	Status           RunStatus
	TurnCount        int
	AverageDeviation *float64
	MaxDeviation     *float64
	DeviationTrend   string
	Insights         string
	InsightsDegraded bool
	MissingSections  []string
	Report           string
	Error            string
}
