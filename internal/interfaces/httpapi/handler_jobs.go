package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
	"github.com/riskibarqy/fannax/internal/usecase"
)

const queueMessageIDHeader = "Upstash-Message-Id"

// jobRunInput prefers the queue message id so redeliveries of one message
// land on the same dispatch row.
func jobRunInput(r *http.Request, bodyDispatchID string) usecase.JobRunInput {
	if messageID := strings.TrimSpace(r.Header.Get(queueMessageIDHeader)); messageID != "" {
		return usecase.JobRunInput{Trigger: jobscheduler.TriggerQueue, DispatchID: messageID}
	}
	return usecase.JobRunInput{Trigger: jobscheduler.TriggerHTTP, DispatchID: strings.TrimSpace(bodyDispatchID)}
}

func (h *Handler) RunSyncMatchesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMatchesJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, serviceUnavailable("job runner"))
		return
	}
	var req syncMatchesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobs.RunSyncMatches(ctx, jobRunInput(r, req.DispatchID), req.Days)
	if err != nil {
		h.logFailure(ctx, "sync matches job failed", err, "days", req.Days)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result.Fields())
}

func (h *Handler) RunSyncTeamsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncTeamsJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, serviceUnavailable("job runner"))
		return
	}
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobs.RunSyncTeams(ctx, jobRunInput(r, req.DispatchID))
	if err != nil {
		h.logFailure(ctx, "sync teams job failed", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result.Fields())
}

func (h *Handler) RunSettleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, serviceUnavailable("job runner"))
		return
	}
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobs.RunSettle(ctx, jobRunInput(r, req.DispatchID))
	if err != nil {
		h.logFailure(ctx, "settle job failed", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result.Fields())
}
