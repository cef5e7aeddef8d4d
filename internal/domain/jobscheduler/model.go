package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// Trigger says who started a job run.
type Trigger string

const (
	TriggerHTTP      Trigger = "http"
	TriggerScheduler Trigger = "scheduler"
	TriggerQueue     Trigger = "qstash"
)

const (
	JobSyncMatches = "sync-matches"
	JobSyncTeams   = "sync-teams"
	JobSettle      = "settle"
)

// DispatchEvent is one state transition of a job run keyed by DispatchID.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Trigger      Trigger
	Status       DispatchStatus
	Payload      map[string]any
	Result       map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
