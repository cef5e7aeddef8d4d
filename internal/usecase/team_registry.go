package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

const defaultMaxHandleAttempts = 100

// TeamRegistry upserts provider teams and allocates their reserved handles.
type TeamRegistry struct {
	repo        team.Repository
	ids         id.Generator
	logger      *logging.Logger
	maxAttempts int
}

func NewTeamRegistry(repo team.Repository, ids id.Generator, logger *logging.Logger) *TeamRegistry {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamRegistry{
		repo:        repo,
		ids:         ids,
		logger:      logger,
		maxAttempts: defaultMaxHandleAttempts,
	}
}

// Ensure returns the stored team for ext, creating it when unknown and
// refreshing its provider fields otherwise.
func (r *TeamRegistry) Ensure(ctx context.Context, ext ExternalTeam) (team.Team, bool, error) {
	if ext.ExternalID <= 0 {
		return team.Team{}, false, fmt.Errorf("%w: team external id must be positive", ErrInvalidInput)
	}
	ext.Name = strings.TrimSpace(ext.Name)
	if ext.Name == "" {
		return team.Team{}, false, fmt.Errorf("%w: team %d has no name", ErrInvalidInput, ext.ExternalID)
	}

	existing, found, err := r.repo.GetByExternalID(ctx, ext.ExternalID)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("get team external_id=%d: %w", ext.ExternalID, err)
	}
	if found {
		return r.refresh(ctx, existing, ext)
	}

	base := team.BaseHandle(ext.Name)
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		handle := team.HandleCandidate(base, attempt)
		taken, err := r.repo.HandleTaken(ctx, handle)
		if err != nil {
			return team.Team{}, false, fmt.Errorf("check handle %q: %w", handle, err)
		}
		if taken {
			continue
		}

		teamID, err := r.ids.NewID()
		if err != nil {
			return team.Team{}, false, fmt.Errorf("generate team id: %w", err)
		}
		candidate := team.Team{
			ID:             teamID,
			ExternalID:     ext.ExternalID,
			Name:           ext.Name,
			ShortCode:      ext.ShortCode,
			LogoURL:        ext.LogoURL,
			CountryID:      ext.CountryID,
			ReservedHandle: handle,
		}
		stored, created, err := r.repo.Create(ctx, candidate)
		if errors.Is(err, team.ErrHandleTaken) {
			continue
		}
		if err != nil {
			return team.Team{}, false, fmt.Errorf("create team external_id=%d: %w", ext.ExternalID, err)
		}
		if !created {
			return r.refresh(ctx, stored, ext)
		}
		return stored, true, nil
	}

	return team.Team{}, false, fmt.Errorf("%w: no free handle for team %q after %d attempts", ErrConflict, ext.Name, r.maxAttempts)
}

func (r *TeamRegistry) refresh(ctx context.Context, existing team.Team, ext ExternalTeam) (team.Team, bool, error) {
	next, changed := existing.Apply(team.Profile{
		ExternalID: ext.ExternalID,
		Name:       ext.Name,
		ShortCode:  ext.ShortCode,
		LogoURL:    ext.LogoURL,
		CountryID:  ext.CountryID,
	})
	if !changed {
		return existing, false, nil
	}
	if err := r.repo.Update(ctx, next); err != nil {
		return team.Team{}, false, fmt.Errorf("update team id=%s: %w", existing.ID, err)
	}
	return next, false, nil
}
