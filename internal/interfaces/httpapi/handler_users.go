package httpapi

import "net/http"

func (h *Handler) ListTopPredictors(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopPredictors")
	defer span.End()

	if h.leaderboard == nil {
		writeError(ctx, w, serviceUnavailable("leaderboard"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.leaderboard.TopPredictors(ctx, limit)
	if err != nil {
		h.logFailure(ctx, "list top predictors failed", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(items))
}
