package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fannax/internal/platform/logging"
)

type TeamSyncConfig struct {
	PerPage  int
	MaxPages int
}

type TeamSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

func (r TeamSyncResult) Fields() map[string]any {
	return map[string]any{
		"created": r.Created,
		"updated": r.Updated,
		"errors":  r.Errors,
		"total":   r.Total,
		"pages":   r.Pages,
	}
}

// TeamSyncService walks the provider team catalogue page by page.
type TeamSyncService struct {
	provider FixtureProvider
	teams    *TeamRegistry
	cfg      TeamSyncConfig
	logger   *logging.Logger
}

func NewTeamSyncService(provider FixtureProvider, teams *TeamRegistry, cfg TeamSyncConfig, logger *logging.Logger) *TeamSyncService {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamSyncService{provider: provider, teams: teams, cfg: cfg, logger: logger}
}

func (s *TeamSyncService) Sync(ctx context.Context) (TeamSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamSyncService.Sync")
	defer span.End()

	if s.provider == nil || s.teams == nil {
		return TeamSyncResult{}, fmt.Errorf("%w: team sync is not configured", ErrDependencyUnavailable)
	}

	var result TeamSyncResult
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.provider.FetchTeamsPage(ctx, page, s.cfg.PerPage)
		if err != nil {
			if page == 1 {
				return TeamSyncResult{}, fmt.Errorf("%w: fetch teams page 1: %w", ErrUpstreamUnavailable, err)
			}
			result.Errors++
			s.logger.WarnContext(ctx, "fetch teams page failed, stopping", "page", page, "error", err)
			break
		}
		result.Pages++
		result.Total += len(batch.Teams)

		for _, item := range batch.Teams {
			_, created, err := s.teams.Ensure(ctx, item)
			if err != nil {
				result.Errors++
				s.logger.WarnContext(ctx, "sync team failed", "team_external_id", item.ExternalID, "error", err)
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}

		if !batch.HasMore {
			break
		}
	}

	s.logger.InfoContext(ctx, "team sync completed",
		"pages", result.Pages,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"errors", result.Errors,
	)
	return result, nil
}
