package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fannax/internal/usecase"
)

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	if h.predictions == nil {
		writeError(ctx, w, serviceUnavailable("prediction service"))
		return
	}
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPredictionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.predictions.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:    principal.UserID,
		Email:     principal.Email,
		MatchID:   req.MatchID,
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
		Caption:   req.Caption,
	})
	if err != nil {
		h.logFailure(ctx, "submit prediction failed", err, "user_id", principal.UserID, "match_id", req.MatchID)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(created))
}

func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPredictions")
	defer span.End()

	if h.predictions == nil {
		writeError(ctx, w, serviceUnavailable("prediction service"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.predictions.List(ctx, usecase.ListPredictionsInput{
		MatchID: queryString(r, "match_id"),
		UserID:  queryString(r, "user_id"),
		Cursor:  queryString(r, "cursor"),
		Limit:   limit,
	})
	if err != nil {
		h.logFailure(ctx, "list predictions failed", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, predictionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, newPage(items, page.NextCursor))
}
