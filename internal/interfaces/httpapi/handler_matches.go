package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fannax/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	if h.matches == nil {
		writeError(ctx, w, serviceUnavailable("match service"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.matches.List(ctx, usecase.ListMatchesInput{
		Status: strings.ToUpper(queryString(r, "status")),
		Cursor: queryString(r, "cursor"),
		Limit:  limit,
	})
	if err != nil {
		h.logFailure(ctx, "list matches failed", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, matchToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, newPage(items, page.NextCursor))
}

func (h *Handler) ListUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUpcomingMatches")
	defer span.End()

	if h.matches == nil {
		writeError(ctx, w, serviceUnavailable("match service"))
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.matches.Upcoming(ctx, days, limit)
	if err != nil {
		h.logFailure(ctx, "list upcoming matches failed", err, "days", days)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(views))
	for _, item := range views {
		items = append(items, matchToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	if h.matches == nil {
		writeError(ctx, w, serviceUnavailable("match service"))
		return
	}
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	view, err := h.matches.GetByID(ctx, matchID)
	if err != nil {
		h.logFailure(ctx, "get match failed", err, "match_id", matchID)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, matchToDTO(view))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	if h.teams == nil {
		writeError(ctx, w, serviceUnavailable("team service"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.teams.List(ctx, queryString(r, "cursor"), limit)
	if err != nil {
		h.logFailure(ctx, "list teams failed", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, teamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, newPage(items, page.NextCursor))
}
