package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

// upsertJobDispatchSuffix keeps the furthest status: a late "sent" event
// never rewinds a completed or failed dispatch.
const upsertJobDispatchSuffix = `ON CONFLICT (dispatch_id)
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    job_path = EXCLUDED.job_path,
    trigger = EXCLUDED.trigger,
    payload = CASE
        WHEN EXCLUDED.payload = '{}'::jsonb THEN job_dispatches.payload
        ELSE EXCLUDED.payload
    END,
    result = COALESCE(EXCLUDED.result, job_dispatches.result),
    status = CASE
        WHEN EXCLUDED.status = 'sent' AND job_dispatches.status IN ('completed', 'failed') THEN job_dispatches.status
        ELSE EXCLUDED.status
    END,
    sent_at = COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at),
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE job_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_dispatches.last_error
    END,
    sent_trace_id = COALESCE(job_dispatches.sent_trace_id, EXCLUDED.sent_trace_id),
    sent_span_id = COALESCE(job_dispatches.sent_span_id, EXCLUDED.sent_span_id),
    completed_trace_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_trace_id
        ELSE job_dispatches.completed_trace_id
    END,
    completed_span_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id
        ELSE job_dispatches.completed_span_id
    END,
    failed_trace_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_trace_id
        ELSE job_dispatches.failed_trace_id
    END,
    failed_span_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_span_id
        ELSE job_dispatches.failed_span_id
    END,
    updated_at = EXCLUDED.updated_at`

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}
	jobPath := strings.TrimSpace(event.JobPath)
	if jobPath == "" {
		jobPath = "/unknown"
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal job dispatch payload: %w", err)
	}
	var resultJSON *string
	if len(event.Result) > 0 {
		raw, err := marshalPayload(event.Result)
		if err != nil {
			return fmt.Errorf("marshal job dispatch result: %w", err)
		}
		resultJSON = &raw
	}

	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    jobName,
		JobPath:    jobPath,
		Trigger:    string(event.Trigger),
		Payload:    payloadJSON,
		Result:     resultJSON,
		Status:     string(event.Status),
		UpdatedAt:  occurredAt,
	}

	switch event.Status {
	case jobscheduler.StatusSent:
		model.SentAt = &occurredAt
		model.SentTraceID = optionalString(event.TraceID)
		model.SentSpanID = optionalString(event.SpanID)
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = optionalString(event.TraceID)
		model.CompletedSpanID = optionalString(event.SpanID)
	case jobscheduler.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = optionalString(event.TraceID)
		model.FailedSpanID = optionalString(event.SpanID)
		model.LastError = optionalString(event.ErrorMessage)
	default:
		return fmt.Errorf("unknown job dispatch status %q", event.Status)
	}

	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}
	return nil
}

const jobDispatchSelectColumns = `dispatch_id, job_name, job_path, trigger, payload, result, status, last_error,
    COALESCE(failed_trace_id, completed_trace_id, sent_trace_id) AS trace_id,
    COALESCE(failed_span_id, completed_span_id, sent_span_id) AS span_id,
    updated_at`

func (r *JobDispatchRepository) ListRecent(ctx context.Context, jobName string, limit int) ([]jobscheduler.DispatchEvent, error) {
	conditions := make([]qb.Condition, 0, 1)
	if jobName = strings.TrimSpace(jobName); jobName != "" {
		conditions = append(conditions, qb.Eq("job_name", jobName))
	}

	query, args, err := qb.Select(jobDispatchSelectColumns).From("job_dispatches").
		Where(conditions...).
		OrderBy("updated_at DESC", "dispatch_id DESC").
		Limit(fetchLimit(limit, 50)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job dispatches query: %w", err)
	}

	var rows []jobDispatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job dispatches: %w", err)
	}

	out := make([]jobscheduler.DispatchEvent, 0, len(rows))
	for _, row := range rows {
		event := jobscheduler.DispatchEvent{
			DispatchID:   row.DispatchID,
			JobName:      row.JobName,
			JobPath:      row.JobPath,
			Trigger:      jobscheduler.Trigger(row.Trigger),
			Status:       jobscheduler.DispatchStatus(row.Status),
			ErrorMessage: nullStringToString(row.LastError),
			OccurredAt:   row.UpdatedAt.UTC(),
			TraceID:      nullStringToString(row.TraceID),
			SpanID:       nullStringToString(row.SpanID),
		}
		if event.Payload, err = unmarshalPayload(row.Payload); err != nil {
			return nil, fmt.Errorf("decode job dispatch payload dispatch_id=%s: %w", row.DispatchID, err)
		}
		if event.Result, err = unmarshalPayload(row.Result); err != nil {
			return nil, fmt.Errorf("decode job dispatch result dispatch_id=%s: %w", row.DispatchID, err)
		}
		out = append(out, event)
	}
	return out, nil
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := sonic.MarshalString(payload)
	if err != nil {
		return "", err
	}
	return raw, nil
}

func unmarshalPayload(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
