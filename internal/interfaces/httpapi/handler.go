package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/riskibarqy/fannax/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

// Services groups the use cases exposed over HTTP. Nil members answer 503.
type Services struct {
	Matches       *usecase.MatchService
	Teams         *usecase.TeamService
	Predictions   *usecase.PredictionService
	Leaderboard   *usecase.LeaderboardService
	Notifications *usecase.NotificationService
	Jobs          *usecase.JobRunner
}

type Handler struct {
	matches       *usecase.MatchService
	teams         *usecase.TeamService
	predictions   *usecase.PredictionService
	leaderboard   *usecase.LeaderboardService
	notifications *usecase.NotificationService
	jobs          *usecase.JobRunner
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(services Services, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matches:       services.Matches,
		teams:         services.Teams,
		predictions:   services.Predictions,
		leaderboard:   services.Leaderboard,
		notifications: services.Notifications,
		jobs:          services.Jobs,
		logger:        logger.Named("httpapi"),
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeJSON reads an optional JSON body; an empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid json payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func serviceUnavailable(name string) error {
	return fmt.Errorf("%w: %s is not configured", usecase.ErrDependencyUnavailable, name)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// logFailure keeps client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
