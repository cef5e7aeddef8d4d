package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/upcoming", handler.ListUpcomingMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/predictions", handler.ListPredictions)
	mux.HandleFunc("GET /v1/users/top-predictors", handler.ListTopPredictors)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/predictions", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("GET /v1/notifications", RequireAuth(verifier, http.HandlerFunc(handler.ListNotifications)))
	mux.Handle("POST /v1/notifications/read-all", RequireAuth(verifier, http.HandlerFunc(handler.MarkAllNotificationsRead)))
	mux.Handle("POST /v1/notifications/{notificationID}/read", RequireAuth(verifier, http.HandlerFunc(handler.MarkNotificationRead)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncMatchesJob)))
	mux.Handle("POST /v1/internal/jobs/sync-teams", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncTeamsJob)))
	mux.Handle("POST /v1/internal/jobs/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleJob)))
}
